package payload

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

const (
	identityPrefix = "ImportResources-"
	identityDigits = 16
)

// Identity mirrors the invocation payload at synthesis time. The application
// identifier is not known yet; it is fully determined by the application name
// and the deploying account and region.
type Identity struct {
	AppName         string `json:"appName"`
	SourceStackName string `json:"sourceStackName"`
}

// IdentityToken returns a stable token for id: equal inputs give equal tokens.
func IdentityToken(id Identity) (string, error) {
	raw, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize identity: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return identityPrefix + hex.EncodeToString(sum[:])[:identityDigits], nil
}
