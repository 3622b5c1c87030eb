package classify

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompts/function.tmpl
var functionPromptRaw string

//go:embed prompts/ats_url_system.txt
var atsURLSystemPrompt string

//go:embed prompts/ats_url.tmpl
var atsURLPromptRaw string

var funcs = template.FuncMap{"join": strings.Join}

// FunctionTemplate renders the job-function classification prompt from
// {Title, Functions}.
var FunctionTemplate = template.Must(template.New("function").Funcs(funcs).Parse(functionPromptRaw))

// ATSURLTemplate renders the careers-URL question from {Company}.
var ATSURLTemplate = template.Must(template.New("ats_url").Parse(atsURLPromptRaw))
