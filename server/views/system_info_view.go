package views

import (
	"html/template"

	"cyberxp/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// SystemInfoView renders the cyber-system's own diagnostic text for the
// current state inside a preformatted block, updated as training proceeds.
type SystemInfoView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

// NewSystemInfoView wires a SystemInfoView onto a stream of Snapshots.
func NewSystemInfoView(done <-chan struct{}, snapshots <-chan Snapshot) fastview.ViewComponent {
	v := &SystemInfoView{id: "systeminfo"}
	v.updates = channerics.Convert(done, snapshots, v.onUpdate)
	return v
}

func (v *SystemInfoView) Updates() <-chan []fastview.EleUpdate {
	return v.updates
}

func (v *SystemInfoView) onUpdate(s Snapshot) []fastview.EleUpdate {
	return []fastview.EleUpdate{
		{EleId: v.id, Ops: []fastview.Op{{Key: "textContent", Value: s.SystemInfo}}},
	}
}

// Parse implements fastview.ViewComponent.
func (v *SystemInfoView) Parse(parent *template.Template) (name string, err error) {
	name = v.id
	_, err = parent.Parse(`{{ define "` + name + `" }}
		<pre id="` + v.id + `" style="font-family: monospace;"></pre>
	{{ end }}`)
	return name, err
}
