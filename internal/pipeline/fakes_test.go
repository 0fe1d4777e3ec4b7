package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/biomail/internal/instagram"
	"github.com/nao1215/biomail/internal/model"
	"github.com/nao1215/biomail/internal/website"
)

// discardLogger keeps test output quiet.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeProfiles serves profiles from memory. Handles without an entry are
// reported as not found.
type fakeProfiles struct {
	profiles map[string]*model.Profile
	errs     map[string]error
	calls    []string
}

func (f *fakeProfiles) FetchProfile(_ context.Context, handle string) (*model.Profile, error) {
	f.calls = append(f.calls, handle)
	if err, ok := f.errs[handle]; ok {
		return nil, err
	}
	p, ok := f.profiles[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", instagram.ErrNotFound, handle)
	}
	return p, nil
}

// fakeSites serves website text from memory. URLs without an entry are
// reported as unreachable.
type fakeSites struct {
	pages map[string]*website.Page
	calls []string
}

func (f *fakeSites) Fetch(_ context.Context, url string) (*website.Page, error) {
	f.calls = append(f.calls, url)
	p, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s: connection refused", website.ErrUnreachable, url)
	}
	return p, nil
}
