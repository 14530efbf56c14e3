package report_test

import (
	"testing"
	"time"

	"github.com/dekarrin/ddreduce/internal/oracle"
	"github.com/dekarrin/ddreduce/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Text_ContainsKeyFields(t *testing.T) {
	rpt := report.New("/proj", "src/main.rs", oracle.BuildError{
		HasCode: true, ErrorCode: "E0384", ErrorSrc: "error[E0384]: cannot assign twice",
	}, time.Unix(1000, 0).UTC())
	rpt.Finished = time.Unix(1010, 0).UTC()
	rpt.Iterations = 4
	rpt.Accepted = 2
	rpt.Rejected = 2
	rpt.FinalSourceHash = "deadbeef"
	rpt.RemovedKinds = []string{"LocalStatement", "ArrayExpression"}

	text := rpt.Text()
	assert.Contains(t, text, "E0384")
	assert.Contains(t, text, "/proj")
	assert.Contains(t, text, "src/main.rs")
	assert.Contains(t, text, "deadbeef")
	assert.Contains(t, text, "LocalStatement and ArrayExpression")
}

func Test_Text_NoRemovals(t *testing.T) {
	rpt := report.New("/proj", "src/main.rs", oracle.BuildError{}, time.Now())
	rpt.Finished = time.Now()

	assert.Contains(t, rpt.Text(), "(nothing removed)")
}

func Test_SignAndVerify_RoundTrip(t *testing.T) {
	rpt := report.New("/proj", "src/main.rs", oracle.BuildError{HasCode: true, ErrorCode: "E0384"}, time.Now())
	rpt.Finished = time.Now()
	rpt.FinalSourceHash = "abc123"

	secret := []byte("test-secret")
	tok, err := rpt.Sign(secret)
	require.NoError(t, err)

	runID, err := report.VerifyAttestation(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, rpt.RunID, runID)
}

func Test_Verify_WrongSecretFails(t *testing.T) {
	rpt := report.New("/proj", "src/main.rs", oracle.BuildError{}, time.Now())
	rpt.Finished = time.Now()

	tok, err := rpt.Sign([]byte("right"))
	require.NoError(t, err)

	_, err = report.VerifyAttestation(tok, []byte("wrong"))
	require.Error(t, err)
}
