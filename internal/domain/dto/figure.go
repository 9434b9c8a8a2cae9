package dto

// Figure is a Plotly figure as consumed by Plotly.react on the dashboard.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type string     `json:"type"`
	Mode string     `json:"mode,omitempty"`
	Name string     `json:"name,omitempty"`
	X    []string   `json:"x"`
	Y    []*float64 `json:"y"`
}

type Layout struct {
	Title       Title        `json:"title"`
	XAxis       Axis         `json:"xaxis"`
	YAxis       Axis         `json:"yaxis"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	Title Title `json:"title"`
}

type Annotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ShowArrow bool    `json:"showarrow"`
}

type CountryOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
