package generator

// Breach describes a publicly known data breach.
type Breach struct {
	Name    string `json:"name"`
	Year    int    `json:"year"`
	Records string `json:"records"`
}

var knownBreaches = []Breach{
	{Name: "LinkedIn", Year: 2021, Records: "700M"},
	{Name: "Facebook", Year: 2019, Records: "533M"},
	{Name: "Yahoo", Year: 2014, Records: "500M"},
	{Name: "Equifax", Year: 2017, Records: "147M"},
	{Name: "Adobe", Year: 2013, Records: "153M"},
}

// breachHitRate is the chance each known breach is reported.
const breachHitRate = 0.4

// CheckBreaches simulates a lookup: each known breach is reported independently
// with probability 0.4. The email is not consulted and no request leaves the process.
func (g *Generator) CheckBreaches(_ string) []Breach {
	found := []Breach{}
	for _, b := range knownBreaches {
		if g.rnd.Float64() > 1-breachHitRate {
			found = append(found, b)
		}
	}
	return found
}
