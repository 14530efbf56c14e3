// Package report builds the human-readable summary of a reduction run and
// an optional signed attestation of its result, extending spec.md's
// Build-oracle/Reduction-searcher data with the RunReport shape named in
// SPEC_FULL.md §3.
package report

import (
	"fmt"
	"time"

	"github.com/dekarrin/ddreduce/internal/oracle"
	"github.com/dekarrin/ddreduce/internal/util"
	"github.com/dekarrin/rosed"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RunReport is the record of one searcher run, independent of how it is
// rendered or persisted.
type RunReport struct {
	RunID            uuid.UUID
	MasterError      oracle.BuildError
	Started          time.Time
	Finished         time.Time
	Iterations       int
	Accepted         int
	Rejected         int
	FinalSource      string
	FinalSourceHash  string
	ProjectDir       string
	ReducedFile      string
	// RemovedKinds names the syntax-graph vertex kind of each accepted
	// removal, in acceptance order.
	RemovedKinds []string
}

// New creates a RunReport with a freshly generated run ID.
func New(projectDir, reducedFile string, masterErr oracle.BuildError, started time.Time) *RunReport {
	return &RunReport{
		RunID:       uuid.New(),
		ProjectDir:  projectDir,
		ReducedFile: reducedFile,
		MasterError: masterErr,
		Started:     started,
	}
}

// Text renders a human-readable plaintext report, wrapped and tabulated the
// way the teacher's debug listings are (internal/game's DEBUG command
// output), using rosed.
func (r *RunReport) Text() string {
	header := fmt.Sprintf("Reduction report %s\n", r.RunID)
	header += fmt.Sprintf("project: %s\nfile:    %s\n", r.ProjectDir, r.ReducedFile)

	errCode := "(none)"
	if r.MasterError.HasCode {
		errCode = r.MasterError.ErrorCode
	}

	data := [][]string{
		{"field", "value"},
		{"master error code", errCode},
		{"master error", r.MasterError.ErrorSrc},
		{"started", r.Started.Format(time.RFC3339)},
		{"finished", r.Finished.Format(time.RFC3339)},
		{"duration", r.Finished.Sub(r.Started).String()},
		{"iterations", fmt.Sprintf("%d", r.Iterations)},
		{"accepted", fmt.Sprintf("%d", r.Accepted)},
		{"rejected", fmt.Sprintf("%d", r.Rejected)},
		{"final source sha256", r.FinalSourceHash},
	}

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}

	table := rosed.Edit("").
		InsertTableOpts(0, data, 80, tableOpts).
		String()

	removed := "(nothing removed)"
	if len(r.RemovedKinds) > 0 {
		removed = "removed " + util.MakeTextList(r.RemovedKinds)
	}

	return header + "\n" + table + "\n" + removed + "\n"
}

// reportClaims is the set of custom JWT claims an attestation carries,
// alongside the registered "iss"/"sub"/"iat"/"nbf" claims.
type reportClaims struct {
	jwt.RegisteredClaims
	MasterErrorCode string `json:"master_error_code,omitempty"`
	Iterations      int    `json:"iterations"`
	Accepted        int    `json:"accepted"`
	FinalSourceHash string `json:"final_source_hash"`
}

// Sign produces a compact JWS attesting to this report's outcome, signed
// with HS512 over secret, in the style of the teacher's generateJWT.
func (r *RunReport) Sign(secret []byte) (string, error) {
	claims := reportClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ddreduce",
			Subject:   r.RunID.String(),
			IssuedAt:  jwt.NewNumericDate(r.Finished),
			NotBefore: jwt.NewNumericDate(r.Finished),
		},
		MasterErrorCode: r.MasterError.ErrorCode,
		Iterations:      r.Iterations,
		Accepted:        r.Accepted,
		FinalSourceHash: r.FinalSourceHash,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(secret)
}

// VerifyAttestation checks a signature produced by Sign and returns the
// run ID it attests to.
func VerifyAttestation(tokStr string, secret []byte) (uuid.UUID, error) {
	var claims reportClaims
	_, err := jwt.ParseWithClaims(tokStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer("ddreduce"))
	if err != nil {
		return uuid.UUID{}, err
	}

	return uuid.Parse(claims.Subject)
}
