package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	minisign "github.com/jedisct1/go-minisign"
)

// Verifier checks detached Minisign signatures over manifest files before
// they are parsed.
type Verifier struct {
	publicKey minisign.PublicKey
}

// NewVerifier parses a Minisign public key (comment header included) and
// returns a verifier for signatures made with the matching secret key.
func NewVerifier(pubKey string) (*Verifier, error) {
	pubKey = strings.TrimSpace(pubKey)
	if pubKey == "" {
		return nil, errors.New("minisign public key is required")
	}
	publicKey, err := minisign.DecodePublicKey(pubKey)
	if err != nil {
		return nil, fmt.Errorf("parse minisign public key: %w", err)
	}
	return &Verifier{publicKey: publicKey}, nil
}

// LoadVerifier reads a Minisign public key file and builds a Verifier from it.
func LoadVerifier(path string) (*Verifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key %q: %w", path, err)
	}
	return NewVerifier(string(data))
}

// SignaturePath returns the conventional detached-signature path for a
// manifest file.
func SignaturePath(manifestPath string) string {
	return manifestPath + ".minisig"
}

// Verify reads the manifest and its detached signature from disk and checks
// the signature against the trusted public key.
func (v *Verifier) Verify(ctx context.Context, manifestPath, signaturePath string) error {
	if v == nil {
		return errors.New("signature verifier not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(manifestPath) == "" {
		return errors.New("manifest path is required")
	}
	if strings.TrimSpace(signaturePath) == "" {
		return errors.New("signature path is required")
	}

	signatureBytes, err := os.ReadFile(signaturePath)
	if err != nil {
		return fmt.Errorf("read signature %q: %w", signaturePath, err)
	}
	signature, err := minisign.DecodeSignature(string(signatureBytes))
	if err != nil {
		return fmt.Errorf("decode signature %q: %w", signaturePath, err)
	}
	manifestBytes, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest %q: %w", manifestPath, err)
	}
	ok, err := v.publicKey.Verify(manifestBytes, signature)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("manifest signature verification failed")
	}
	return nil
}
