package regionnet

import (
	"context"

	"regionnet/internal/engine"
	"regionnet/internal/model"
	"regionnet/internal/storage"
)

// tracer snapshots selected outputs after each step into a store.
type tracer struct {
	store    storage.Store
	runID    string
	selected map[string]struct{}
	recorded int
}

func newTracer(store storage.Store, runID string, outputs []string) *tracer {
	t := &tracer{store: store, runID: runID}
	if len(outputs) > 0 {
		t.selected = make(map[string]struct{}, len(outputs))
		for _, endpoint := range outputs {
			t.selected[endpoint] = struct{}{}
		}
	}
	return t
}

func (t *tracer) wants(region, output string) bool {
	if t.selected == nil {
		return true
	}
	_, ok := t.selected[region+"."+output]
	return ok
}

func (t *tracer) observe(ctx context.Context, step int, regions []*engine.Region) error {
	var snapshots []model.OutputSnapshot
	for _, region := range regions {
		for _, name := range region.OutputNames() {
			if !t.wants(region.Name(), name) {
				continue
			}
			output, err := region.Output(name)
			if err != nil {
				return err
			}
			view, err := output.Data()
			if err != nil {
				return err
			}
			snapshots = append(snapshots, model.OutputSnapshot{
				VersionedRecord: storage.CurrentVersion(),
				RunID:           t.runID,
				Step:            step,
				Region:          region.Name(),
				Output:          name,
				Type:            output.ElementType().String(),
				RegionLevel:     output.IsRegionLevel(),
				NodeWidth:       output.NodeOutputElementCount(),
				Values:          view.Values(),
			})
		}
	}
	if len(snapshots) == 0 {
		return nil
	}
	if err := t.store.AppendSnapshots(ctx, snapshots); err != nil {
		return err
	}
	t.recorded += len(snapshots)
	return nil
}
