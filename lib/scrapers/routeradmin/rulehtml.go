package routeradmin

import (
	"log/slog"
	"strings"

	"github.com/Wayne-King/RouterControl/lib/htmlutil"
	"github.com/PuerkitoBio/goquery"
)

// rulePropertyPrefix is the fixed prefix the router's firmware puts on
// the name attribute of every rule-row span.
const rulePropertyPrefix = "rule_"

// fragmentExcerptLength caps how much of an unparseable fragment gets
// quoted in the warning log.
const fragmentExcerptLength = 25

// Properties is the ordered set of rule properties extracted from one
// rule-row fragment.
type Properties struct {
	names  []string
	values map[string]string
}

func newProperties() Properties {
	return Properties{values: map[string]string{}}
}

// add keeps the first occurrence of a name. Some firmware versions
// emit rule_device_name twice in the same row; the duplicate is
// silently discarded.
func (p *Properties) add(name, value string) {
	if _, exists := p.values[name]; exists {
		return
	}
	p.names = append(p.names, name)
	p.values[name] = value
}

func (p Properties) Get(name string) string {
	return p.values[name]
}

func (p Properties) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p Properties) Len() int {
	return len(p.names)
}

// Names returns the property names in extraction order.
func (p Properties) Names() []string {
	return p.names
}

// ParseRuleFragment extracts rule properties from one row's HTML. The
// fragment is expected to contain <SPAN name="rule_<property>">value</SPAN>
// tags; everything else is ignored. A fragment with no recognizable
// properties logs a warning and yields an empty set rather than
// failing the whole page.
func ParseRuleFragment(fragment string) Properties {
	props := newProperties()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		slog.Warn(
			"failed to parse rule fragment",
			"fragment", htmlutil.Excerpt(fragment, fragmentExcerptLength),
			"err", err,
		)
		return props
	}

	for _, node := range doc.Find("span[name]").Nodes {
		name := htmlutil.Attr(node, "name")
		if !strings.HasPrefix(name, rulePropertyPrefix) {
			continue
		}
		props.add(
			strings.TrimPrefix(name, rulePropertyPrefix),
			htmlutil.GetText(node),
		)
	}

	if props.Len() == 0 {
		slog.Warn(
			"no rule properties in fragment",
			"fragment", htmlutil.Excerpt(fragment, fragmentExcerptLength),
		)
	}
	return props
}
