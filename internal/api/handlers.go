package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cipherkit/internal/dispatch"
	"cipherkit/internal/errors"
	"cipherkit/internal/hashing"
	"cipherkit/internal/version"
)

// maxBodyBytes bounds every JSON request body. The dispatcher applies its
// own, usually smaller, text limit.
const maxBodyBytes = 8 << 20

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// CipherRequest is the body of /v1/cipher and /v1/decipher.
type CipherRequest struct {
	Algorithm string `json:"algorithm"`
	Param     string `json:"param,omitempty"`
	Text      string `json:"text"`
}

// AlgorithmInfo describes one registered algorithm.
type AlgorithmInfo struct {
	Name          string `json:"name"`
	Family        string `json:"family"`
	Description   string `json:"description"`
	Usage         string `json:"usage"`
	Param         string `json:"param,omitempty"`
	ParamRequired bool   `json:"paramRequired"`
}

// HashRequest is the body of /v1/hash. Empty Algorithms means all.
type HashRequest struct {
	Text       string   `json:"text"`
	Algorithms []string `json:"algorithms,omitempty"`
}

// HashResponse lists the digests of the request text.
type HashResponse struct {
	Digests []hashing.Digest `json:"digests"`
}

// MessageRequest is an incoming chat message.
type MessageRequest struct {
	Text string `json:"text"`
}

// MessageResponse carries the HTML reply to a chat message.
type MessageResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	}, http.StatusOK)
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	all := s.cipher.Registry().All()
	infos := make([]AlgorithmInfo, 0, len(all))
	for _, a := range all {
		infos = append(infos, AlgorithmInfo{
			Name:          a.Name,
			Family:        string(a.Family),
			Description:   a.Description,
			Usage:         a.Usage(),
			Param:         a.ParamHelp,
			ParamRequired: a.Param.Required(),
		})
	}
	WriteJSON(w, map[string]interface{}{"algorithms": infos}, http.StatusOK)
}

func (s *Server) handleCipher(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, dispatch.OpCipher)
}

func (s *Server) handleDecipher(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, dispatch.OpDecipher)
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, op dispatch.Operation) {
	var body CipherRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeBodyError(w, err)
		return
	}

	res, err := s.cipher.Execute(r.Context(), dispatch.Request{
		Operation: string(op),
		Algorithm: body.Algorithm,
		Param:     body.Param,
		Text:      body.Text,
	})
	if err != nil {
		WriteCipherError(w, err)
		return
	}
	WriteJSON(w, res, http.StatusOK)
}

func (s *Server) handleHash(w http.ResponseWriter, r *http.Request) {
	var body HashRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeBodyError(w, err)
		return
	}
	if body.Text == "" {
		WriteCipherError(w, errors.Newf(errors.EmptyInput, "please provide text to hash"))
		return
	}

	if len(body.Algorithms) == 0 {
		WriteJSON(w, HashResponse{Digests: hashing.StringDigests(body.Text)}, http.StatusOK)
		return
	}

	algos := make([]string, len(body.Algorithms))
	for i, name := range body.Algorithms {
		algos[i] = strings.ToLower(strings.TrimSpace(name))
		if !hashing.Supported(algos[i]) {
			WriteCipherError(w, errors.Newf(errors.UnsupportedHash, "hash algorithm '%s' not supported", name).
				WithDetails(map[string]interface{}{"available": hashing.Algorithms}))
			return
		}
	}

	digests, err := hashing.ReaderDigests(strings.NewReader(body.Text), algos, 0)
	if err != nil {
		InternalError(w, "hashing failed", err)
		return
	}
	WriteJSON(w, HashResponse{Digests: digests}, http.StatusOK)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeBodyError(w, err)
		return
	}
	WriteJSON(w, MessageResponse{Reply: s.chat.Handle(r.Context(), body.Text)}, http.StatusOK)
}

// decodeBody reads a single JSON object, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.Newf(errors.InputTooLarge, "request body exceeds %d bytes", maxBodyBytes)
		}
		if err == io.EOF {
			return errors.Newf(errors.EmptyInput, "request body is empty")
		}
		return errors.New(errors.InvalidParameter, "invalid JSON body", err)
	}
	if dec.More() {
		return errors.New(errors.InvalidParameter, "invalid JSON body", fmt.Errorf("trailing data after object"))
	}
	return nil
}

// writeBodyError reports a malformed body as 400 rather than the 422 used
// for rejected cipher parameters.
func writeBodyError(w http.ResponseWriter, err error) {
	if errors.CodeOf(err) == errors.InvalidParameter {
		WriteError(w, err, http.StatusBadRequest)
		return
	}
	WriteCipherError(w, err)
}
