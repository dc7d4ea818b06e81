package format

import (
	"text/template"
	"time"

	"github.com/manifoldco/promptui"
)

var FuncMap = template.FuncMap{
	"shorten": func(s string) string {
		if len(s) <= 8 {
			return s
		}
		return s[0:8]
	},
	"since": func(unix int64) string {
		return time.Since(time.Unix(unix, 0)).Round(time.Second).String()
	},
	"role": func(upstream bool) string {
		if upstream {
			return "upstream"
		}
		return "participant"
	},
}

const ConnectionTemplate = `• {{ .ID | green | bold }}
  {{ "Name:" | faint }} {{ .Name }}
  {{ "Role:" | faint }} {{ .Upstream | role }}
  {{ "Created:" | faint }} {{ .Created | since }} ago
  {{ "Transport:" | faint }} {{ .Transport }}
  {{ "Peer:" | faint }} {{ .RemoteAddress }}
  {{ "Packets:" | faint }} {{ .PacketsSent }} sent, {{ .PacketsReceived }} received
  {{ "Sequence:" | faint }} next {{ .NextSequence }}, expecting {{ .ExpectedSequence }} ({{ .Buffered }} buffered)
`

const RecordTemplate = `{{ .Index | printf "%6d" | faint }} {{ .Kind | cyan }} {{ .Entity | bold }}{{ if .Parent }} in {{ .Parent }}{{ end }} {{ "by" | faint }} {{ .Owner | shorten }}
`

// EntityTemplate renders world entities in the interactive prompt.
const EntityTemplate = `{{ .Kind | faint }} {{ .ID | bold }}{{ if .Title }} "{{ .Title }}"{{ end }} {{ .Position.X }},{{ .Position.Y }},{{ .Position.Z }}{{ if .GrabbedBy }} {{ "grabbed by" | faint }} {{ .GrabbedBy | shorten }}{{ end }}
`

func ParseTemplate(body string) *template.Template {
	tpl, err := template.New("").Funcs(promptui.FuncMap).Funcs(FuncMap).Parse(body)
	if err != nil {
		panic(err)
	}
	return tpl
}
