package server

import (
	"net/http"

	"github.com/jonathan/panel-peace/internal/types"
	"github.com/jonathan/panel-peace/internal/views"
	"golang.org/x/sync/errgroup"
)

// handleDashboard assembles stats, active projects and upcoming deadlines.
// The three reads are independent and run concurrently.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var (
		projects     []types.Project
		deadlines    []types.Deadline
		openFeedback int
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		projects, err = s.store.ListProjects(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		deadlines, err = s.store.ListAllDeadlines(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		openFeedback, err = s.store.CountOpenFeedback(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, views.BuildDashboard(projects, deadlines, openFeedback, s.now(), s.upcoming))
}
