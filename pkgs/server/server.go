package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-version"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/pkgs/bridge"
	"github.com/ssvlabs/coa-proof/pkgs/flow"
	"github.com/ssvlabs/coa-proof/spec"
)

// request limits
const (
	generalLimit = 5000
	routeLimit   = 500
	timePeriod   = time.Minute
	maxBodySize  = 1 << 20
	maxBatchSize = 100
)

const (
	ClientVersionHeader = "X-COA-Client-Version"
	RequestIDHeader     = "X-Request-ID"
)

const ErrTooManyRouteRequests = `{"error": "too many requests to /route"}`

// Verifier is the part of the verification bridge the service exposes.
type Verifier interface {
	VerifyOnChain(ctx context.Context, target common.Address, digest [32]byte, encodedProof []byte) (*bridge.VerificationResult, error)
	VerifyWithRetry(ctx context.Context, target common.Address, digest [32]byte, encodedProof []byte) (*bridge.VerificationResult, error)
	VerifyBatch(ctx context.Context, reqs []bridge.Request) []bridge.BatchResult
	ResolveBoundAddress(ctx context.Context, account flow.Address, storagePath string) (common.Address, error)
	Health(ctx context.Context) error
}

// Prover signs ownership proofs for a single source ledger account.
type Prover struct {
	Account        flow.Address
	CapabilityPath string
	Signers        []spec.ProofSigner
}

// Prove signs the digest of message with every configured key.
func (p *Prover) Prove(message []byte, capabilityPath string) (*spec.OwnershipProof, [32]byte, error) {
	if capabilityPath == "" {
		capabilityPath = p.CapabilityPath
	}
	digest := spec.MessageDigest(message)
	proof, err := spec.SignOwnershipProof(p.Account.Bytes(), capabilityPath, digest, p.Signers...)
	if err != nil {
		return nil, digest, err
	}
	return proof, digest, nil
}

// Options configures optional parts of the service.
type Options struct {
	Version string
	// MinClientVersion rejects clients announcing an older version
	MinClientVersion string
	Network          string
	// Prover enables POST /proof
	Prover *Prover
}

// Server structure for the proof service to store http server and its collaborators
type Server struct {
	Logger     *zap.Logger  // logger
	HttpServer *http.Server // http server
	Router     chi.Router   // http router
	Verifier   Verifier
	Prover     *Prover

	version    string
	network    string
	minVersion *version.Version
	metrics    *metrics
}

// New creates the proof service and registers its routes.
func New(verifier Verifier, logger *zap.Logger, opts Options) (*Server, error) {
	if verifier == nil {
		return nil, errors.New("missing verifier")
	}
	s := &Server{
		Logger:   logger,
		Router:   chi.NewRouter(),
		Verifier: verifier,
		Prover:   opts.Prover,
		version:  opts.Version,
		network:  opts.Network,
		metrics:  newMetrics(),
	}
	if opts.MinClientVersion != "" {
		v, err := version.NewVersion(opts.MinClientVersion)
		if err != nil {
			return nil, fmt.Errorf("invalid minimum client version: %w", err)
		}
		s.minVersion = v
	}
	if s.Prover != nil && len(s.Prover.Signers) == 0 {
		return nil, errors.New("prover has no signing keys")
	}
	RegisterRoutes(s)
	return s, nil
}

// Start runs a http server to listen for incoming requests at specified port
func (s *Server) Start(port uint16) error {
	srv := &http.Server{Addr: fmt.Sprintf(":%v", port), Handler: s.Router, ReadHeaderTimeout: 10_000 * time.Millisecond}
	s.HttpServer = srv
	s.Logger.Info("✅ Server is listening for incoming requests", zap.Uint16("port", port))
	if err := s.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts down the http server gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.HttpServer == nil {
		return nil
	}
	return s.HttpServer.Shutdown(ctx)
}
