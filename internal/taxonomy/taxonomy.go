// Package taxonomy holds the fixed PU-industry tables: deliverable
// categories, regions, value-chain links, and the query tokens the
// planner maps them to. These are data, not behavior; changing
// coverage means editing a table here.
package taxonomy

// Category ids. The set is closed; specifications reference these ids.
const (
	CategoryCompanyNews        = "company_news"
	CategoryRegionalMonitoring = "regional_monitoring"
	CategoryIndustryContext    = "industry_context"
	CategoryValueChain         = "value_chain"
	CategoryValueChainLink     = "value_chain_link"
	CategoryCompetitive        = "competitive"
	CategorySustainability     = "sustainability"
	CategoryCapacity           = "capacity"
	CategoryMAndA              = "m_and_a"
	CategoryEarlyWarning       = "early_warning"
	CategoryExecutiveBriefings = "executive_briefings"
)

// Category is one deliverable category of the observatory.
type Category struct {
	ID          string
	Name        string
	Description string
}

// Categories is the ordered deliverable category table.
var Categories = []Category{
	{CategoryCompanyNews, "Company News Tracking", "Latest verified news on PU-relevant companies across the value chain"},
	{CategoryRegionalMonitoring, "Regional Market Monitoring", "Aggregated updates by region (EMEA, Middle East, China, NE Asia, SEA, India)"},
	{CategoryIndustryContext, "Industry Context & Insight", "Interpretation of news: supply/demand impact, margin pressure, trade flow shifts"},
	{CategoryValueChain, "PU Value-Chain Analysis", "Analysis by product: MDI, TDI, polyether/polyester polyols, systems, additives"},
	{CategoryValueChainLink, "Link in the PU Value Chain", "Intelligence tagged by value chain position: raw materials, system houses, foam converters, end-use"},
	{CategoryCompetitive, "Competitive Intelligence", "Side-by-side comparison of major producers' actions and positioning"},
	{CategorySustainability, "Sustainability & Regulation Tracking", "Decarbonization projects, low-PCF products, REACH/diisocyanates compliance"},
	{CategoryCapacity, "Capacity & Asset Moves", "New plants, expansions, shutdowns, mothballing, asset sales"},
	{CategoryMAndA, "M&A and Partnerships", "Acquisitions, JVs, strategic partnerships relevant to PU"},
	{CategoryEarlyWarning, "Early-Warning Signals", "Subtle indicators (price moves, utilization comments, restructuring language)"},
	{CategoryExecutiveBriefings, "Executive-Ready Briefings", "Condensed, decision-focused summaries"},
}

// CategoryQueryTokens maps a category id to the search angle used for
// its planned query. Unknown categories fall back to the bare scope
// phrase.
var CategoryQueryTokens = map[string]string{
	CategoryCompanyNews:        "polyurethane company news",
	CategoryRegionalMonitoring: "polyurethane market region",
	CategoryIndustryContext:    "polyurethane industry supply demand",
	CategoryValueChain:         "MDI TDI polyols polyurethane",
	CategoryValueChainLink:     "polyurethane value chain",
	CategoryCompetitive:        "polyurethane producers competitive",
	CategorySustainability:     "polyurethane sustainability REACH decarbonization",
	CategoryCapacity:           "polyurethane capacity expansion plant",
	CategoryMAndA:              "polyurethane acquisition partnership M&A",
	CategoryEarlyWarning:       "polyurethane price demand utilization",
	CategoryExecutiveBriefings: "polyurethane market briefing",
}

// ScopePhrase anchors every planned query so results stay inside the
// industry scope.
const ScopePhrase = "polyurethane"

// ValueChainLink is one ecosystem role in the PU value chain.
type ValueChainLink struct {
	ID          string
	Name        string
	Description string
}

// ValueChainLinks is the ecosystem-role table.
var ValueChainLinks = []ValueChainLink{
	{"raw_materials", "Raw materials / Intermediates", "Isocyanates, polyols, silicones, amines, catalysts, blowing agents, additives"},
	{"system_houses", "System houses", "Formulators and system providers"},
	{"foam_converters", "Foam manufacturers & converters", "Foam production, moulding, conversion"},
	{"end_use", "End-use", "Automotive, mattresses, construction, appliances"},
}

// Regions available for specification scope.
var Regions = []string{
	"EMEA",
	"Middle East",
	"China",
	"NE Asia",
	"SEA",
	"India",
	"North America",
	"South America",
}

// RegionKeywords maps a region to lowercase keywords signalling
// coverage of it in headline text. Used by extraction to tag signals;
// keywords are kept conservative to avoid substring misfires.
var RegionKeywords = map[string][]string{
	"EMEA":          {"europe", "emea", "germany", "france", "italy", "spain", "united kingdom", "poland", "netherlands", "belgium", "turkey"},
	"Middle East":   {"middle east", "saudi", "uae", "qatar", "kuwait", "gulf cooperation"},
	"China":         {"china", "chinese"},
	"NE Asia":       {"japan", "south korea", "korea", "taiwan"},
	"SEA":           {"southeast asia", "vietnam", "thailand", "indonesia", "malaysia", "philippines", "singapore"},
	"India":         {"india", "indian"},
	"North America": {"united states", "u.s.", "canada", "mexico", "north america"},
	"South America": {"brazil", "argentina", "chile", "colombia", "south america"},
}

// SignalTypes is the closed signal classification set. Extraction
// without a classifier assigns SignalTypeOther.
var SignalTypes = []string{
	"capacity_assets",
	"regulation_standards",
	"mna_partnerships",
	"pricing_feedstocks",
	"demand_enduse",
	"technology_recycling",
	"competitive_actions",
	"safety_incidents",
	"other",
}

// SignalTypeOther is the default classification for unclassified signals.
const SignalTypeOther = "other"

// CategoryName returns the display name for a category id, falling
// back to the id itself for unknown values.
func CategoryName(id string) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Name
		}
	}

	return id
}

// ValueChainLinkName returns the display name for a value-chain link id.
func ValueChainLinkName(id string) string {
	for _, v := range ValueChainLinks {
		if v.ID == id {
			return v.Name
		}
	}

	return id
}
