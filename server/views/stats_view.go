package views

import (
	"fmt"
	"html/template"

	"cyberxp/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// StatsView renders a small table of running training totals: episode and
// step counts, the latest result and reward, the success rate so far, and
// the agent's current exploration rate.
type StatsView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

// NewStatsView wires a StatsView onto a stream of Snapshots.
func NewStatsView(done <-chan struct{}, snapshots <-chan Snapshot) fastview.ViewComponent {
	sv := &StatsView{id: "stats"}
	sv.updates = channerics.Convert(done, snapshots, sv.onUpdate)
	return sv
}

func (sv *StatsView) Updates() <-chan []fastview.EleUpdate {
	return sv.updates
}

func (sv *StatsView) onUpdate(s Snapshot) []fastview.EleUpdate {
	text := func(id, value string) fastview.EleUpdate {
		return fastview.EleUpdate{EleId: id, Ops: []fastview.Op{{Key: "textContent", Value: value}}}
	}
	return []fastview.EleUpdate{
		text("stats-goal", s.GoalName),
		text("stats-episodes", fmt.Sprintf("%d", s.EpisodeCount)),
		text("stats-steps", fmt.Sprintf("%d", s.StepCount)),
		text("stats-last-result", s.LastResult.String()),
		text("stats-last-reward", fmt.Sprintf("%.2f", s.LastReward)),
		text("stats-success-rate", fmt.Sprintf("%.1f%%", 100*s.SuccessRate())),
		text("stats-epsilon", fmt.Sprintf("%.3f", s.Epsilon)),
	}
}

// Parse implements fastview.ViewComponent.
func (sv *StatsView) Parse(parent *template.Template) (name string, err error) {
	name = sv.id
	_, err = parent.Parse(`{{ define "` + name + `" }}
		<table id="` + sv.id + `" style="border-collapse: collapse;">
			<tr><td>goal</td><td id="stats-goal"></td></tr>
			<tr><td>episodes</td><td id="stats-episodes"></td></tr>
			<tr><td>steps</td><td id="stats-steps"></td></tr>
			<tr><td>last result</td><td id="stats-last-result"></td></tr>
			<tr><td>last reward</td><td id="stats-last-reward"></td></tr>
			<tr><td>success rate</td><td id="stats-success-rate"></td></tr>
			<tr><td>epsilon</td><td id="stats-epsilon"></td></tr>
		</table>
	{{ end }}`)
	return name, err
}
