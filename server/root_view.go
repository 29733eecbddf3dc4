package server

import (
	"context"
	"html/template"
	"log"
	"time"

	"cyberxp/server/fastview"
	"cyberxp/server/views"

	channerics "github.com/niceyeti/channerics/channels"
)

// rootView is the main page: the container for every view component and
// the wiring that fans their individual update channels into one stream.
type rootView struct {
	components []fastview.ViewComponent
	updates    <-chan []fastview.EleUpdate
}

// newRootView builds the dashboard's views over snapshots, a stream of
// training progress updates.
func newRootView(ctx context.Context, snapshots <-chan views.Snapshot) *rootView {
	components, err := fastview.NewViewBuilder[views.Snapshot, views.Snapshot]().
		WithContext(ctx).
		WithModel(snapshots, func(s views.Snapshot) views.Snapshot { return s }).
		WithView(func(done <-chan struct{}, in <-chan views.Snapshot) fastview.ViewComponent {
			return views.NewStatsView(done, in)
		}).
		WithView(func(done <-chan struct{}, in <-chan views.Snapshot) fastview.ViewComponent {
			return views.NewSystemInfoView(done, in)
		}).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	return &rootView{
		components: components,
		updates:    fanIn(ctx.Done(), components),
	}
}

// Updates returns the aggregated, rate-limited element-update channel for
// every view this root view owns.
func (rv *rootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse builds the main page template: the websocket bootstrap script plus
// every child view's markup, nested in registration order.
func (rv *rootView) Parse(parent *template.Template) (name string, err error) {
	var bodySpec string
	for _, vc := range rv.components {
		tname, parseErr := vc.Parse(parent)
		if parseErr != nil {
			return "", parseErr
		}
		bodySpec += `{{ template "` + tname + `" . }}`
	}

	name = "mainpage"
	_, err = parent.Parse(`
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + window.location.host + "/ws");
				ws.onerror = function (event) { console.log("websocket error:", event); };
				ws.onmessage = function (event) {
					const updates = JSON.parse(event.data);
					for (const update of updates) {
						const ele = document.getElementById(update.EleId);
						if (!ele) { continue; }
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value);
							}
						}
					}
				};
			</script>
		</head>
		<body>
		` + bodySpec + `
		</body>
	</html>
	{{ end }}`)
	return name, err
}

// fanIn merges every view's update channel into one, batching updates
// within a short window so redundant updates to the same element collapse
// to the latest value.
func fanIn(done <-chan struct{}, components []fastview.ViewComponent) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(components))
	for i, vc := range components {
		inputs[i] = vc.Updates()
	}
	return batchify(done, channerics.Merge(done, inputs...), 20*time.Millisecond)
}

func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)
		batch := map[string]fastview.EleUpdate{}
		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, update := range updates {
				batch[update.EleId] = update
			}
			if time.Since(last) > rate && len(updates) > 0 {
				select {
				case output <- values(batch):
					batch = map[string]fastview.EleUpdate{}
					last = time.Now()
				case <-done:
					return
				}
			}
		}
	}()

	return output
}

func values[K comparable, V any](m map[K]V) (vs []V) {
	for _, v := range m {
		vs = append(vs, v)
	}
	return vs
}
