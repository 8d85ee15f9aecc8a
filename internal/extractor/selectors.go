package extractor

// KnownBodySelectors lists the full-text containers of each site, most
// specific first.
var KnownBodySelectors = map[string][]string{
	"vbpl": {
		"div.toanvancontent",
	},
	"tvpl": {
		"div.cldivContentDocVn",
		"div.content1",
	},
}

// SelectorsFor returns the known selectors of site followed by extra ones,
// each selector once.
func SelectorsFor(site string, extra ...string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, list := range [][]string{KnownBodySelectors[site], extra} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				merged = append(merged, s)
			}
		}
	}
	return merged
}
