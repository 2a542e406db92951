package ebay

// Wire types for the eBay Browse API getItem response. Only the fields the
// resolver maps are declared.

type browseItemResponse struct {
	ItemID           string                `json:"itemId"`
	Title            string                `json:"title"`
	Subtitle         string                `json:"subtitle"`
	Description      string                `json:"description"`
	ShortDescription string                `json:"shortDescription"`
	Price            *browsePrice          `json:"price,omitempty"`
	Condition        string                `json:"condition"`
	Image            *browseImage          `json:"image,omitempty"`
	AdditionalImages []browseImage         `json:"additionalImages,omitempty"`
	Seller           *browseSeller         `json:"seller,omitempty"`
	ItemLocation     *browseLocation       `json:"itemLocation,omitempty"`
	ShippingOptions  []browseShippingEntry `json:"shippingOptions,omitempty"`
}

type browsePrice struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type browseImage struct {
	ImageURL string `json:"imageUrl"`
}

type browseSeller struct {
	Username           string `json:"username"`
	FeedbackScore      int    `json:"feedbackScore"`
	FeedbackPercentage string `json:"feedbackPercentage"`
}

type browseLocation struct {
	City            string `json:"city"`
	StateOrProvince string `json:"stateOrProvince"`
	Country         string `json:"country"`
}

type browseShippingEntry struct {
	ShippingServiceCode string       `json:"shippingServiceCode"`
	ShippingCost        *browsePrice `json:"shippingCost,omitempty"`
}

type browseErrorResponse struct {
	Errors []struct {
		ErrorID     int    `json:"errorId"`
		Message     string `json:"message"`
		LongMessage string `json:"longMessage"`
	} `json:"errors"`
}
