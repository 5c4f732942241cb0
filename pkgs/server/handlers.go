package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/pkgs/bridge"
	"github.com/ssvlabs/coa-proof/pkgs/flow"
	"github.com/ssvlabs/coa-proof/pkgs/logging"
	"github.com/ssvlabs/coa-proof/pkgs/utils"
	"github.com/ssvlabs/coa-proof/pkgs/wire"
	"github.com/ssvlabs/coa-proof/spec"
)

const outcomeValid = "valid"

func (s *Server) proofHandler(writer http.ResponseWriter, request *http.Request) {
	if s.Prover == nil {
		s.writeError(writer, request, errors.New("proof signing is not enabled"), http.StatusNotImplemented)
		return
	}
	req := &wire.ProofRequest{}
	if err := decodeBody(writer, request, req); err != nil {
		s.writeError(writer, request, err, http.StatusBadRequest)
		return
	}
	if len(req.Message) == 0 {
		s.writeError(writer, request, errors.New("message is required"), http.StatusBadRequest)
		return
	}
	proof, digest, err := s.Prover.Prove(req.Message, req.CapabilityPath)
	if err != nil {
		s.writeError(writer, request, &utils.SensitiveError{Err: err, PresentedErr: "failed to sign proof"}, statusFor(err))
		return
	}
	encoded, err := proof.Encode()
	if err != nil {
		s.writeError(writer, request, err, statusFor(err))
		return
	}
	s.logger(request).Debug("signed ownership proof",
		zap.String(logging.FieldAccount, s.Prover.Account.Hex()),
		zap.String(logging.FieldPath, proof.CapabilityPath),
		zap.Int("keys", len(proof.KeyIndices)))
	utils.WriteJSONResponse(s.logger(request), writer, http.StatusOK, &wire.ProofResponse{
		Account:        s.Prover.Account.Hex(),
		CapabilityPath: proof.CapabilityPath,
		KeyIndices:     proof.KeyIndices,
		MessageDigest:  digest,
		Proof:          encoded,
	})
}

func (s *Server) verifyHandler(writer http.ResponseWriter, request *http.Request) {
	req := &wire.VerifyRequest{}
	if err := decodeBody(writer, request, req); err != nil {
		s.writeError(writer, request, err, http.StatusBadRequest)
		return
	}
	digest, err := req.MessageDigest()
	if err != nil {
		s.writeError(writer, request, err, http.StatusBadRequest)
		return
	}
	if _, err := spec.DecodeOwnershipProof(req.Proof); err != nil {
		s.metrics.observe(wire.KindEncoding)
		s.writeError(writer, request, err, http.StatusBadRequest)
		return
	}

	verify := s.Verifier.VerifyOnChain
	if req.Retry {
		verify = s.Verifier.VerifyWithRetry
	}
	res, err := verify(request.Context(), req.Target, digest, req.Proof)
	resp := s.verifyResponse(req.Target, digest, res, err)
	s.logger(request).Debug("verified ownership proof",
		zap.String(logging.FieldTarget, req.Target.Hex()),
		zap.Bool("valid", resp.Valid),
		zap.String("error_kind", resp.ErrorKind))
	utils.WriteJSONResponse(s.logger(request), writer, statusFor(err), resp)
}

func (s *Server) verifyBatchHandler(writer http.ResponseWriter, request *http.Request) {
	req := &wire.VerifyBatchRequest{}
	if err := decodeBody(writer, request, req); err != nil {
		s.writeError(writer, request, err, http.StatusBadRequest)
		return
	}
	if len(req.Requests) == 0 || len(req.Requests) > maxBatchSize {
		s.writeError(writer, request, fmt.Errorf("batch must hold between 1 and %d requests", maxBatchSize), http.StatusBadRequest)
		return
	}
	reqs := make([]bridge.Request, len(req.Requests))
	for i := range req.Requests {
		digest, err := req.Requests[i].MessageDigest()
		if err != nil {
			s.writeError(writer, request, fmt.Errorf("request %d: %w", i, err), http.StatusBadRequest)
			return
		}
		reqs[i] = bridge.Request{Target: req.Requests[i].Target, Digest: digest, Proof: req.Requests[i].Proof}
	}

	results := s.Verifier.VerifyBatch(request.Context(), reqs)
	resp := &wire.VerifyBatchResponse{Results: make([]wire.VerifyResponse, len(results))}
	for i, r := range results {
		resp.Results[i] = *s.verifyResponse(reqs[i].Target, reqs[i].Digest, r.Result, r.Err)
	}
	utils.WriteJSONResponse(s.logger(request), writer, http.StatusOK, resp)
}

func (s *Server) resolveHandler(writer http.ResponseWriter, request *http.Request) {
	account, err := flow.HexToAddress(request.URL.Query().Get("account"))
	if err != nil {
		s.writeError(writer, request, fmt.Errorf("invalid account: %w", err), http.StatusBadRequest)
		return
	}
	path := request.URL.Query().Get("path")
	if path == "" {
		path = flow.DefaultStoragePath
	}
	addr, err := s.Verifier.ResolveBoundAddress(request.Context(), account, path)
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, spec.ErrVerificationFailed) {
			status = http.StatusNotFound
		}
		s.writeError(writer, request, err, status)
		return
	}
	utils.WriteJSONResponse(s.logger(request), writer, http.StatusOK, &wire.ResolveResponse{
		Account:        account.Hex(),
		CapabilityPath: path,
		Address:        addr,
	})
}

func (s *Server) healthHandler(writer http.ResponseWriter, request *http.Request) {
	resp := &wire.HealthResponse{Status: "ok", Version: s.version, Network: s.network}
	if err := s.Verifier.Health(request.Context()); err != nil {
		s.logger(request).Warn("health check failed", zap.Error(err))
		resp.Status = err.Error()
		utils.WriteJSONResponse(s.logger(request), writer, http.StatusServiceUnavailable, resp)
		return
	}
	utils.WriteJSONResponse(s.logger(request), writer, http.StatusOK, resp)
}

func (s *Server) verifyResponse(target common.Address, digest [32]byte, res *bridge.VerificationResult, err error) *wire.VerifyResponse {
	resp := &wire.VerifyResponse{Target: target, Digest: digest}
	if res != nil {
		resp.Valid = res.Valid
		resp.Value = res.Value[:]
		resp.BlockNumber = res.BlockNumber
	}
	if err != nil {
		resp.Valid = false
		resp.ErrorKind = wire.ErrorKind(err)
		resp.Error = err.Error()
		s.metrics.observe(resp.ErrorKind)
	} else {
		s.metrics.observe(outcomeValid)
	}
	return resp
}

func (s *Server) writeError(writer http.ResponseWriter, request *http.Request, err error, status int) {
	logger := s.logger(request)
	logger.Debug("request failed", zap.Int("status", status), zap.Error(err))
	resp := &wire.ErrorResponse{
		Error:     utils.PresentedError(err),
		RequestID: writer.Header().Get(RequestIDHeader),
	}
	if kind := wire.ErrorKind(err); kind != wire.KindInternal {
		resp.ErrorKind = kind
	}
	utils.WriteJSONResponse(logger, writer, status, resp)
}

// statusFor maps the error taxonomy onto HTTP status codes. A proof the target rejects is
// still a well formed answer.
func statusFor(err error) int {
	switch {
	case err == nil, errors.Is(err, spec.ErrVerificationFailed):
		return http.StatusOK
	case errors.Is(err, spec.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, spec.ErrEncoding):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(writer http.ResponseWriter, request *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
