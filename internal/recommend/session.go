// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session is caller-owned recommendation state: the last request's
// fingerprint and its result. The engine never stores sessions; callers pass
// one in and keep the one returned.
//
// Signature is an HMAC-SHA256 over the other fields under the engine's
// session key. Resume only reuses a Result whose signature verifies, so a
// client cannot plant items by editing the session it holds.
type Session struct {
	ID          string    `json:"id"`
	Mode        string    `json:"mode"`
	Fingerprint string    `json:"fingerprint"`
	Result      *Result   `json:"result,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	Signature   string    `json:"signature,omitempty"`
}

// Fingerprint identifies the inputs of a request. Two requests with the same
// fingerprint ask for the same thing.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func Fingerprint(req Request) string {
	h := fnv.New64a()
	parts := []string{
		req.Mode.String(),
		strconv.FormatInt(req.UserID, 10),
	}
	switch req.Mode {
	case ModeAssistant:
		parts = append(parts, strings.ToLower(strings.Join(strings.Fields(req.Message), " ")))
	case ModeShuffle:
		s := req.Shuffle
		parts = append(parts,
			strings.ToLower(string(s.MediaType)),
			strings.ToLower(string(s.Policy)),
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.MinRating, 'f', 2, 64),
		)
	}
	_, _ = h.Write([]byte(strings.Join(parts, "\x1f")))
	return fmt.Sprintf("%016x", h.Sum64())
}

// Resume returns the session's cached result when req matches the session
// fingerprint, the session signature verifies and force is false. Otherwise
// it recomputes and returns an updated, signed session. The reused flag
// reports which happened.
//
//nolint:gocritic // hugeParam: value semantics keep Session caller-owned
func (e *Engine) Resume(ctx context.Context, sess Session, req Request, force bool) (Session, bool, error) {
	fp := Fingerprint(req)
	if !force && sess.Result != nil && sess.Fingerprint == fp && e.verifySession(&sess) {
		return sess, true, nil
	}

	res, err := e.Recommend(ctx, req)
	if err != nil {
		return sess, false, err
	}

	id := sess.ID
	if id == "" {
		id = uuid.NewString()
	}
	next := Session{
		ID:          id,
		Mode:        req.Mode.String(),
		Fingerprint: fp,
		Result:      res,
		UpdatedAt:   time.Now().UTC(),
	}
	sig, err := e.signSession(&next)
	if err != nil {
		return sess, false, fmt.Errorf("sign session: %w", err)
	}
	next.Signature = sig
	return next, false, nil
}

// signSession computes the session MAC. The result is covered through its
// JSON form, which is what callers store and send back.
func (e *Engine) signSession(s *Session) (string, error) {
	result, err := json.Marshal(s.Result)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, e.sessionKey)
	for _, part := range []string{s.ID, s.Mode, s.Fingerprint, s.UpdatedAt.UTC().Format(time.RFC3339Nano)} {
		_, _ = mac.Write([]byte(part))
		_, _ = mac.Write([]byte{0x1f})
	}
	_, _ = mac.Write(result)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

func (e *Engine) verifySession(s *Session) bool {
	if s.Signature == "" {
		return false
	}
	want, err := e.signSession(s)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(s.Signature), []byte(want))
}
