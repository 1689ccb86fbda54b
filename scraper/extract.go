package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"homescout/models"
)

// Extraction is best-effort pattern matching over the rendered page text.
// A field the page never mentions stays nil; the scoring core knows the
// difference between absent and zero, so we must never fake a value here.

var (
	priceRe     = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`)
	bedsRe      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:bed|beds|bedroom|bedrooms|bd)\b`)
	bathsRe     = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:bath|baths|bathroom|bathrooms|ba)\b`)
	sqftRe      = regexp.MustCompile(`(?i)([\d,]+)\s*(?:sq\s*ft|sqft|square\s*feet)`)
	yearRe      = regexp.MustCompile(`(?i)(?:built\s*in|year\s*built)[:\s]*(\d{4})`)
	lotRe       = regexp.MustCompile(`(?i)([\d,.]+)\s*(acres?|sq\s*ft\s*lot|sqft\s*lot)`)
	zestimateRe = regexp.MustCompile(`(?i)zestimate[^\$\d]{0,20}\$?([\d,]+)`)
	daysRe      = regexp.MustCompile(`(?i)(\d+)\s*days?\s*on\s*(?:zillow|market)`)
	hoaRe       = regexp.MustCompile(`(?i)(?:hoa|\bhoa\s*fee)[:\s]*\$?([\d,]+)`)
	hoodRe      = regexp.MustCompile(`(?i)(?:neighborhood|community|subdivision)[:\s]*([^,\n|]+)`)
	imageRe     = regexp.MustCompile(`(?i)!\[.*?\]\((https?://[^\s)]+\.(?:jpg|jpeg|png|webp)[^\s)]*)\)`)

	garageRe   = regexp.MustCompile(`(?i)(\d+)\s*(?:car\s*)?(?:attached\s*|detached\s*)?garage`)
	noGarageRe = regexp.MustCompile(`(?i)\bno\s+garage\b`)
	carportRe  = regexp.MustCompile(`(?i)garage\s*(?:spaces?|spots?)[:\s]*(\d+)`)

	elementaryRe = regexp.MustCompile(`(?i)(\d{1,2})\s*/\s*10[^\n]{0,80}elementary|elementary[^\n]{0,80}?(\d{1,2})\s*/\s*10`)
	middleRe     = regexp.MustCompile(`(?i)(\d{1,2})\s*/\s*10[^\n]{0,80}middle|middle[^\n]{0,80}?(\d{1,2})\s*/\s*10`)
	highRe       = regexp.MustCompile(`(?i)(\d{1,2})\s*/\s*10[^\n]{0,80}high\s*school|high\s*school[^\n]{0,80}?(\d{1,2})\s*/\s*10`)

	walkScoreRe = regexp.MustCompile(`(?i)walk\s*score[^\d]{0,10}(\d{1,3})`)
	bikeScoreRe = regexp.MustCompile(`(?i)bike\s*score[^\d]{0,10}(\d{1,3})`)

	floodLineRe = regexp.MustCompile(`(?i)flood\s*(?:zone|risk|factor)[:\s]*([^\n|]+)`)

	addressHeadingRe = regexp.MustCompile(`(?im)^#\s*(.+(?:St|Street|Ave|Avenue|Rd|Road|Dr|Drive|Ln|Lane|Blvd|Boulevard|Ct|Court|Way|Pl|Place)[^#\n]*)`)
	addressInlineRe  = regexp.MustCompile(`(?i)(\d+\s+[A-Za-z\s]+(?:St|Street|Ave|Avenue|Rd|Road|Dr|Drive|Ln|Lane|Blvd|Boulevard|Ct|Court|Way|Pl|Place)[^,\n]*,\s*[A-Za-z\s]+,\s*[A-Z]{2}\s*\d{5})`)
	urlAddressRe     = regexp.MustCompile(`/homedetails/([^/]+)`)

	mdJunkRe  = regexp.MustCompile(`[#*\[\]]`)
	leadNumRe = regexp.MustCompile(`(?i)^\d+\s*(bed|bath)`)
)

var propertyTypes = []string{
	"Single Family", "Condo", "Townhouse", "Multi-Family",
	"Land", "Apartment", "Mobile", "Manufactured",
}

// ExtractListing parses the rendered page markdown into a RawListing.
func ExtractListing(markdown, url string) *models.RawListing {
	l := &models.RawListing{URL: url}
	lower := strings.ToLower(markdown)

	if m := priceRe.FindString(markdown); m != "" {
		l.Price = m
		if v := parseMoney(m); v > 0 {
			l.PriceNum = &v
		}
	}

	l.Address = extractAddress(markdown, url)

	if m := bedsRe.FindStringSubmatch(markdown); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			l.Beds = &v
		}
	}
	if m := bathsRe.FindStringSubmatch(markdown); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			l.Baths = &v
		}
	}
	if m := sqftRe.FindStringSubmatch(markdown); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		l.Sqft = raw
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			l.SqftNum = &v
		}
	}

	for _, t := range propertyTypes {
		if strings.Contains(lower, strings.ToLower(t)) {
			l.PropertyType = t
			break
		}
	}
	if l.PropertyType == "" {
		l.PropertyType = "Single Family"
	}

	if m := yearRe.FindStringSubmatch(markdown); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			l.YearBuilt = &v
		}
	}

	if m := lotRe.FindStringSubmatch(markdown); m != nil {
		unit := " sqft"
		if strings.Contains(strings.ToLower(m[2]), "acre") {
			unit = " acres"
		}
		l.LotSize = m[1] + unit
	}

	if m := zestimateRe.FindStringSubmatch(markdown); m != nil {
		l.Zestimate = "$" + m[1]
	}

	l.Status = extractStatus(lower)

	if m := daysRe.FindStringSubmatch(markdown); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			l.DaysOnMarket = &v
		}
	}

	if m := hoaRe.FindStringSubmatch(markdown); m != nil {
		l.HOAFee = "$" + m[1] + "/mo"
	}

	if m := hoodRe.FindStringSubmatch(markdown); m != nil {
		l.Neighborhood = truncate(strings.TrimSpace(m[1]), 50)
	}

	extractGarage(markdown, l)
	extractSchools(markdown, l)

	if m := walkScoreRe.FindStringSubmatch(markdown); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v <= 100 {
			l.WalkScore = &v
		}
	}
	if m := bikeScoreRe.FindStringSubmatch(markdown); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v <= 100 {
			l.BikeScore = &v
		}
	}

	if m := floodLineRe.FindStringSubmatch(markdown); m != nil {
		l.FloodZone = truncate(strings.TrimSpace(m[1]), 80)
	}

	if m := imageRe.FindStringSubmatch(markdown); m != nil {
		l.ImageURL = m[1]
	}

	l.Description = extractDescription(markdown)

	return l
}

// ExtractBestPrice finds the most plausible asking price on a page: the
// largest dollar amount within typical listing bounds. Monthly payments
// and fees fall below the floor, so they never win.
func ExtractBestPrice(markdown string) *float64 {
	var best float64
	for _, m := range priceRe.FindAllString(markdown, -1) {
		v := parseMoney(m)
		if v >= 50_000 && v <= 50_000_000 && v > best {
			best = v
		}
	}
	if best == 0 {
		return nil
	}
	return &best
}

func extractAddress(markdown, url string) string {
	if m := addressHeadingRe.FindStringSubmatch(markdown); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := addressInlineRe.FindStringSubmatch(markdown); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := urlAddressRe.FindStringSubmatch(url); m != nil {
		addr := strings.ReplaceAll(m[1], "-", " ")
		return strings.ReplaceAll(addr, "_", ", ")
	}
	return ""
}

func extractStatus(lower string) string {
	switch {
	case strings.Contains(lower, "sold"):
		return "Sold"
	case strings.Contains(lower, "pending"):
		return "Pending"
	case strings.Contains(lower, "for rent"):
		return "For Rent"
	case strings.Contains(lower, "off market"):
		return "Off Market"
	default:
		return "For Sale"
	}
}

func extractGarage(markdown string, l *models.RawListing) {
	if noGarageRe.MatchString(markdown) {
		f := false
		l.HasGarage = &f
		return
	}

	m := carportRe.FindStringSubmatch(markdown)
	if m == nil {
		m = garageRe.FindStringSubmatch(markdown)
	}
	if m == nil {
		return
	}
	if spots, err := strconv.Atoi(m[1]); err == nil && spots > 0 {
		t := true
		l.HasGarage = &t
		l.GarageSpots = &spots
	}
}

func extractSchools(markdown string, l *models.RawListing) {
	l.ElementarySchoolRating = schoolRating(elementaryRe, markdown)
	l.MiddleSchoolRating = schoolRating(middleRe, markdown)
	l.HighSchoolRating = schoolRating(highRe, markdown)
}

// schoolRating handles both orderings of "N/10 ... Elementary" and
// "Elementary ... N/10"; the alternation leaves the unused group empty.
func schoolRating(re *regexp.Regexp, markdown string) *int {
	m := re.FindStringSubmatch(markdown)
	if m == nil {
		return nil
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		if v, err := strconv.Atoi(g); err == nil && v >= 1 && v <= 10 {
			return &v
		}
	}
	return nil
}

func extractDescription(markdown string) string {
	for _, p := range strings.Split(markdown, "\n\n") {
		cleaned := strings.TrimSpace(mdJunkRe.ReplaceAllString(p, ""))
		if len(cleaned) > 80 && !strings.HasPrefix(cleaned, "$") && !leadNumRe.MatchString(cleaned) {
			if len(cleaned) > 800 {
				return cleaned[:800] + "..."
			}
			return cleaned
		}
	}
	return ""
}

func parseMoney(s string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return math.Floor(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
