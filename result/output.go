package result

// OutputUnit is one failure in the flat "basic" output format.
type OutputUnit struct {
	KeywordLocation  string `json:"keywordLocation"  yaml:"keywordLocation"`
	InstanceLocation string `json:"instanceLocation" yaml:"instanceLocation"`
	Kind             string `json:"kind"             yaml:"kind"`
	Error            string `json:"error"            yaml:"error"`
}

// Output is the flat "basic" output format: a verdict plus every failure.
type Output struct {
	Valid  bool         `json:"valid"            yaml:"valid"`
	Errors []OutputUnit `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Basic flattens r into the basic output format.
func (r *Result) Basic() Output {
	out := Output{Valid: r.IsOK()}
	for _, e := range r.Errors() {
		out.Errors = append(out.Errors, OutputUnit{
			KeywordLocation:  e.ID.Schema.String(),
			InstanceLocation: e.ID.Instance.String(),
			Kind:             e.Code.String(),
			Error:            e.Message(),
		})
	}
	return out
}
