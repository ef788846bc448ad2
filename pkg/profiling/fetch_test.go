package profiling

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allocview/pkg/errors"
	"github.com/allocview/pkg/utils"
)

func TestFetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, heapProfile().Write(w))
	}))
	defer srv.Close()

	snap, err := FetchURL(srv.URL+"/debug/pprof/heap", &utils.NullLogger{})
	require.NoError(t, err)
	assert.Len(t, snap.Records, 2)
}

func TestFetchURL_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := FetchURL(srv.URL, &utils.NullLogger{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeProfileError, apperrors.GetErrorCode(err))
}

func TestFetchURL_NotAProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	_, err := FetchURL(srv.URL, &utils.NullLogger{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeProfileError, apperrors.GetErrorCode(err))
}

func TestLoadSource_DispatchesToFile(t *testing.T) {
	_, err := LoadSource("/no/such/profile.pb.gz", &utils.NullLogger{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeProfileError, apperrors.GetErrorCode(err))
}
