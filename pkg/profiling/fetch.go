package profiling

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/pprof/profile"

	apperrors "github.com/allocview/pkg/errors"
	"github.com/allocview/pkg/model"
	"github.com/allocview/pkg/utils"
)

// fetchTimeout bounds a remote profile download.
const fetchTimeout = 2 * time.Minute

// LoadSource reads a heap profile from a local file or, when src is an
// http(s) URL, from a live process exposing the standard pprof
// endpoints (e.g. http://host:6060/debug/pprof/heap).
func LoadSource(src string, logger utils.Logger) (*model.Snapshot, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return FetchURL(src, logger)
	}
	return LoadFile(src, logger)
}

// FetchURL downloads a heap profile over HTTP and converts it into a
// snapshot.
func FetchURL(url string, logger utils.Logger) (*model.Snapshot, error) {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	logger.Debug("fetching profile from %s", url)

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProfileError, "cannot fetch profile", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.CodeProfileError,
			fmt.Sprintf("profile endpoint returned %s", resp.Status), nil)
	}

	prof, err := profile.Parse(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProfileError, "cannot parse fetched profile", err)
	}
	return FromProfile(prof, logger)
}
