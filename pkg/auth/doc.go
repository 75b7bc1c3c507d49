// Package auth obtains bearer tokens for the list store with the OAuth2
// client-credentials grant.
//
// A Provider posts the client id, client secret and scope form-encoded to
// {authority}/{tenant}/oauth2/v2.0/token. Failures are returned as
// *AuthError carrying the status code and the OAuth2 error fields.
//
// Tokens can be shared across requests through a Cache keyed by tenant,
// client id and scope. Cached tokens are refreshed lazily once they come
// within the configured skew of expiry, or when the list store rejects
// them and the caller invokes Invalidate. Concurrent misses for the same
// key share one exchange.
//
//	cache := auth.NewCache(cfg.Identity.Cache.ExpirySkew)
//	provider := auth.NewProvider(&cfg.Identity, auth.WithCache(cache))
//	tok, err := provider.Token(ctx)
package auth
