package wiring

import (
	"time"

	"github.com/felixgeelhaar/laborboard/pkg/application"
	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
)

// AppServices exposes the application layer services wired together with a workspace.
type AppServices struct {
	Workspace *Workspace
	Labor     *application.LaborService
	Audit     *application.AuditService
	Displays  *labor.DisplayTable
	Clock     application.Clock
}

// BuildAppServices opens the workspace at root and constructs the services.
// Callers own the returned services and must Close them.
func BuildAppServices(root string, opts ...application.LaborOption) (*AppServices, error) {
	ws, err := OpenWorkspace(root)
	if err != nil {
		return nil, err
	}

	loc, err := ws.Config.Location()
	if err != nil {
		_ = ws.Close()
		return nil, err
	}
	displays, err := ws.Config.Displays()
	if err != nil {
		_ = ws.Close()
		return nil, err
	}
	clock := func() time.Time { return time.Now().In(loc) }

	base := []application.LaborOption{
		application.WithClock(clock),
		application.WithDefaultDivisors(ws.Config.Divisors()),
		application.WithLogger(ws.Logger),
		application.WithActor(actorName()),
	}
	laborSvc := application.NewLaborService(ws.Repo, ws.Audit, append(base, opts...)...)

	return &AppServices{
		Workspace: ws,
		Labor:     laborSvc,
		Audit:     ws.Audit,
		Displays:  displays,
		Clock:     clock,
	}, nil
}

// Close releases the workspace resources.
func (s *AppServices) Close() error {
	if s == nil || s.Workspace == nil {
		return nil
	}
	return s.Workspace.Close()
}
