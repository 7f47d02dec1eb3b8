// Package jwt implements HS256 JSON Web Tokens (RFC 7519).
//
// Service.Generate signs any JSON-serializable claims value; Service.Parse
// verifies the signature in constant time, checks exp and nbf, and decodes the
// payload into the target:
//
//	svc, err := jwt.NewFromString(cfg.JWTSigningKey)
//	token, err := svc.Generate(claims)
//
//	var claims Claims
//	if err := svc.Parse(token, &claims); errors.Is(err, jwt.ErrExpiredToken) {
//		...
//	}
//
// Claims types embed StandardClaims to get the registered claims.
package jwt
