// Package password hashes and verifies user passwords with Argon2id.
//
// Hashing is deliberately CPU- and memory-intensive, so both operations are
// pushed onto a fixed pool of worker goroutines instead of running on the
// goroutine serving the request.
package password

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"conduit/errs"
)

// Params configure Argon2id hashing.
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns OWASP-recommended defaults for Argon2id.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024, // 64 MiB
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher derives and verifies PHC-formatted Argon2id hashes on a dedicated
// worker pool.
type Hasher struct {
	params Params
	jobs   chan func()
}

// NewHasher starts a pool with the given number of workers.
func NewHasher(params Params, workers int) *Hasher {
	if workers <= 0 {
		workers = 2
	}
	h := &Hasher{
		params: params,
		jobs:   make(chan func()),
	}
	for i := 0; i < workers; i++ {
		go h.worker()
	}
	return h
}

func (h *Hasher) worker() {
	for job := range h.jobs {
		job()
	}
}

// Close stops the worker pool. Operations already submitted still complete.
func (h *Hasher) Close() {
	close(h.jobs)
}

// offload runs fn on a pool worker and waits for it. Waiting is abandoned
// when ctx is done; the job itself runs to completion regardless.
func (h *Hasher) offload(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return errs.Internal(err)
	}

	done := make(chan struct{})
	job := func() {
		defer close(done)
		fn()
	}

	select {
	case h.jobs <- job:
	case <-ctx.Done():
		return errs.Internal(ctx.Err())
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errs.Internal(ctx.Err())
	}
}

// Hash derives a self-describing hash string from a cleartext password
// using a fresh random salt.
func (h *Hasher) Hash(ctx context.Context, cleartext string) (string, error) {
	var encoded string
	var hashErr error

	err := h.offload(ctx, func() {
		encoded, hashErr = hashWithParams(cleartext, h.params)
	})
	if err != nil {
		return "", err
	}
	if hashErr != nil {
		return "", errs.Internal(hashErr)
	}
	return encoded, nil
}

// Verify re-derives the hash using the parameters and salt embedded in the
// stored string. A mismatch yields ErrUnauthorized; a malformed stored hash
// is an internal error, never conflated with a wrong password.
func (h *Hasher) Verify(ctx context.Context, cleartext, encoded string) error {
	var verifyErr error

	err := h.offload(ctx, func() {
		verifyErr = verify(cleartext, encoded)
	})
	if err != nil {
		return err
	}
	return verifyErr
}

func hashWithParams(cleartext string, p Params) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(cleartext), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Key := base64.RawStdEncoding.EncodeToString(key)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism, b64Salt, b64Key), nil
}

func verify(cleartext, encoded string) error {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return errs.Internal(err)
	}

	derived := argon2.IDKey([]byte(cleartext), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	if subtle.ConstantTimeCompare(key, derived) != 1 {
		return errs.ErrUnauthorized
	}
	return nil
}

func decodeHash(encoded string) (*Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, nil, errors.New("invalid argon2 hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, errors.New("invalid argon2 hash version")
	}
	if version != argon2.Version {
		return nil, nil, nil, errors.New("unsupported argon2 version")
	}

	params := &Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return nil, nil, nil, errors.New("invalid argon2 hash parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, err
	}
	params.SaltLength = uint32(len(salt))

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, err
	}
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}
