package credstore

const queryUpsertCredential = `
INSERT INTO credentials (
	key, token_type, access_token, scopes,
	refresh_token, expires_at, hard_expiration_time, owner_username
) VALUES (
	@key, @token_type, @access_token, @scopes,
	@refresh_token, @expires_at, @hard_expiration_time, @owner_username
)
ON CONFLICT (key) DO UPDATE SET
	token_type           = EXCLUDED.token_type,
	access_token         = EXCLUDED.access_token,
	scopes               = EXCLUDED.scopes,
	refresh_token        = EXCLUDED.refresh_token,
	expires_at           = EXCLUDED.expires_at,
	hard_expiration_time = EXCLUDED.hard_expiration_time,
	owner_username       = EXCLUDED.owner_username,
	updated_at           = now()
`

const queryGetCredential = `
SELECT token_type, access_token, scopes,
       refresh_token, expires_at, hard_expiration_time, owner_username
FROM credentials
WHERE key = $1
`

const queryDeleteCredential = `
DELETE FROM credentials WHERE key = $1
`

const queryPruneExpiredCredentials = `
DELETE FROM credentials
WHERE (expires_at IS NOT NULL AND expires_at < now())
   OR (hard_expiration_time IS NOT NULL AND hard_expiration_time < now())
`
