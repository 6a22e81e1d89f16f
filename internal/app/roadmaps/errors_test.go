package roadmaps

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		msg  string
		want ErrorKind
	}{
		{"Error 400, Message: API key not valid. Please pass a valid API key., Status: INVALID_ARGUMENT", KindAuthConfigInvalid},
		{"reason: API_KEY_INVALID", KindAuthConfigInvalid},
		{"[429 Too Many Requests] QUOTA_EXCEEDED", KindQuotaExceeded},
		{"Error 429, Status: RESOURCE_EXHAUSTED", KindQuotaExceeded},
		{"connection reset by peer", KindUnknown},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Classify(errors.New(tc.msg)), tc.msg)
	}
	require.Equal(t, KindUnknown, Classify(nil))
}

func TestGenerationError_Unwraps(t *testing.T) {
	t.Parallel()

	upstream := errors.New("QUOTA_EXCEEDED")
	err := fmt.Errorf("handler: %w", &GenerationError{Kind: KindQuotaExceeded, Err: upstream})
	require.ErrorIs(t, err, upstream)
	require.Equal(t, KindQuotaExceeded, KindOf(err))
	require.Equal(t, KindUnknown, KindOf(upstream))
	require.Contains(t, err.Error(), "quota_exceeded")
}
