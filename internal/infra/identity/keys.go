package identity

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

type jwks struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

// minRefreshInterval bounds how often unknown key ids may trigger a fetch.
const minRefreshInterval = 30 * time.Second

// KeySet caches the provider's public signing keys, refetching the JWKS
// document after an hour or when an unknown key id shows up, at most once per
// minRefreshInterval.
type KeySet struct {
	url        string
	mu         sync.RWMutex
	cache      map[string]crypto.PublicKey
	fetched    time.Time
	attempted  time.Time
	httpClient *http.Client
	now        func() time.Time
}

func NewKeySet(url string) *KeySet {
	return &KeySet{
		url:        url,
		cache:      make(map[string]crypto.PublicKey),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// Key returns the public key for kid.
func (k *KeySet) Key(ctx context.Context, kid string) (crypto.PublicKey, error) {
	if key, ok := k.lookup(kid, time.Hour); ok {
		return key, nil
	}
	if k.claimRefresh() {
		if err := k.refresh(ctx); err != nil {
			return nil, err
		}
	}
	if key, ok := k.lookup(kid, 0); ok {
		return key, nil
	}
	return nil, fmt.Errorf("unknown key id %q", kid)
}

func (k *KeySet) lookup(kid string, maxAge time.Duration) (crypto.PublicKey, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if maxAge > 0 && k.now().Sub(k.fetched) >= maxAge {
		return nil, false
	}
	key, ok := k.cache[kid]
	return key, ok
}

func (k *KeySet) claimRefresh() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	if !k.attempted.IsZero() && now.Sub(k.attempted) < minRefreshInterval {
		return false
	}
	k.attempted = now
	return true
}

func (k *KeySet) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return err
	}
	resp, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: status %d", resp.StatusCode)
	}
	var set jwks
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}
	keys := make(map[string]crypto.PublicKey)
	for _, key := range set.Keys {
		pub, err := publicKeyFromJWK(key)
		if err != nil {
			continue
		}
		keys[key.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("no usable keys in jwks")
	}
	k.mu.Lock()
	k.cache = keys
	k.fetched = k.now()
	k.mu.Unlock()
	return nil
}

func publicKeyFromJWK(j jwk) (crypto.PublicKey, error) {
	switch j.Kty {
	case "RSA":
		return rsaKeyFromJWK(j)
	case "EC":
		return ecKeyFromJWK(j)
	default:
		return nil, fmt.Errorf("unsupported key type %q", j.Kty)
	}
}

func rsaKeyFromJWK(j jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}

func ecKeyFromJWK(j jwk) (*ecdsa.PublicKey, error) {
	var curve elliptic.Curve
	switch j.Crv {
	case "P-256":
		curve = elliptic.P256()
	case "P-384":
		curve = elliptic.P384()
	default:
		return nil, fmt.Errorf("unsupported curve %q", j.Crv)
	}
	xBytes, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return nil, err
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(j.Y)
	if err != nil {
		return nil, err
	}
	key := &ecdsa.PublicKey{Curve: curve, X: new(big.Int).SetBytes(xBytes), Y: new(big.Int).SetBytes(yBytes)}
	if !curve.IsOnCurve(key.X, key.Y) {
		return nil, errors.New("point not on curve")
	}
	return key, nil
}
