package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/analysis"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/chart"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/types"
	"github.com/gin-gonic/gin"
)

const (
	pageTitle    = "Frailty Risk Prediction System for Patients with Knee Osteoarthritis"
	pageSubtitle = "Based on the input clinical features, predict the probability of frailty in patients with knee osteoarthritis and visualize the decision-making rationale."
	pageTemplate = "page.html"
)

var templateFuncs = template.FuncMap{
	"headline": types.Headline,
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	Name        string
	Prompt      string
	Categorical bool
	Min         string
	Max         string
	Step        string
	Unit        string
	Value       string
	Error       string
	Options     []optionView
}

type resultView struct {
	Probability float64
	Tier        analysis.Tier
	Guidance    analysis.Guidance
	Chart       template.HTML
	Base        string
	Final       string
}

type pageData struct {
	Title    string
	Subtitle string
	Nonce    string
	Fields   []fieldView
	Errors   []string
	Result   *resultView
}

// newPageData builds the form in form order from the submitted strings and
// the per-field messages of a failed validation.
func newPageData(nonce string, in types.FormInput, verr *analysis.ValidationError) pageData {
	data := pageData{
		Title:    pageTitle,
		Subtitle: pageSubtitle,
		Nonce:    nonce,
	}
	if verr != nil {
		data.Errors = verr.Messages()
	}

	for _, f := range analysis.FormOrder() {
		spec, _ := analysis.Spec(f)
		view := fieldView{
			Name:        string(f),
			Prompt:      spec.Prompt,
			Categorical: spec.Kind == analysis.KindCategorical,
			Min:         spec.FormatValue(spec.Min),
			Max:         spec.FormatValue(spec.Max),
			Step:        strconv.FormatFloat(spec.Step, 'f', -1, 64),
			Unit:        spec.Unit,
			Value:       in.Get(f),
		}
		if verr != nil {
			view.Error = verr.Fields[f]
		}
		for _, o := range spec.Options {
			v := strconv.Itoa(o.Value)
			view.Options = append(view.Options, optionView{
				Value:    v,
				Label:    o.Label,
				Selected: v == view.Value,
			})
		}
		data.Fields = append(data.Fields, view)
	}
	return data
}

func newResultView(a analysis.Assessment) *resultView {
	ch := chart.Build(a)
	return &resultView{
		Probability: a.Probability,
		Tier:        a.Tier,
		Guidance:    analysis.GuidanceFor(a.Tier),
		// the chart escapes every label it renders
		Chart: template.HTML(ch.SVG()),
		Base:  fmt.Sprintf("%.4f", ch.Base),
		Final: fmt.Sprintf("%.4f", ch.Final),
	}
}

// renderPage executes the page template and writes it with no-store caching.
func renderPage(c *gin.Context, tmpl *template.Template, status int, data pageData) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, pageTemplate, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
	return nil
}
