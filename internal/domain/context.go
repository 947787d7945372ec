package domain

// ContextDocument is the resolved value of a context key.
type ContextDocument struct {
	Key     ContextKey `json:"key"`
	Content string     `json:"content"`
	Origin  Origin     `json:"origin"`
}

// RemoteFile returns the path of the server file that backs the key.
func (k ContextKey) RemoteFile() string {
	return "/" + string(k) + ".txt"
}

// Default returns the compiled default text for the key.
func (k ContextKey) Default() string {
	switch k {
	case ContextFacilitySpecs:
		return DefaultFacilitySpecs
	case ContextDesignGuidelines:
		return DefaultDesignGuidelines
	case ContextCompanyContext:
		return DefaultCompanyContext
	}
	return ""
}

// DefaultFacilitySpecs is the fallback facility specification.
const DefaultFacilitySpecs = `MAIN BUILDING:
- Dimensions: 130m long x 80m wide
- Height: 8m at center (sloped roof with skylights)
- Structure: Divided into 2 SEPARATE HALLS by solid opaque wall in middle
- Each hall contains 6 circular tanks (arranged in 2 rows of 3)
- Total internal tanks: 12 (6 per hall)
- External migration tanks: 4 circular tanks outside building

TANK SPECIFICATIONS:
- Diameter: 16m each
- Height: 1.8m
- Volume: 350 cubic meters
- Material: Blue fiberglass
- Spacing: 3m between tanks

BUILDING FEATURES:
- Walls: Tinted semi-transparent glass (blue-green tint)
- Roof: Sloped with skylights along center ridge for natural light
- Floor: Light gray epoxy with blue directional lines
- LED lighting along tank edges
- Digital monitoring screens
- Stainless steel railings
- Plants along walkways

QUARANTINE BUILDING (separate):
- Dimensions: 25m wide x 50m deep
- Contains 14 smaller circular tanks
- Tank diameter: 5-6m each`

// DefaultDesignGuidelines is the fallback design guideline document.
const DefaultDesignGuidelines = `# Pure Blue Fish - Design Guidelines

## Concept
High-tech aquaculture facility, NOT agricultural/farm aesthetic.
Clean, modern, professional appearance. Premium, futuristic feel.

## Color Palette
- Pure Blue #0066CC (tanks, accents)
- Turquoise #008B8B (water, atmosphere)
- White #F5F5F5 (floors, walls)
- Gray #4A4A4A (steel, frames)
- Green #228B22 (plants)

## Required Elements
- Light gray epoxy floor with blue lines
- Digital monitoring screens
- Workers in white lab coats
- Plants along walkways
- Blue LED lighting on tank edges
- Clear water with visible fish
- Stainless steel railings

## MUST AVOID
- Farm aesthetic (hay, dirt, rust)
- Murky water
- Messy exposed pipes
- Dark industrial atmosphere`

// DefaultCompanyContext is the fallback company background.
const DefaultCompanyContext = `# Pure Blue Fish (PBF)

Israeli aquaculture company with Zero Water Discharge (ZWD) technology.
Mission: "Saving the Ocean & Feeding the World"
Founded 2016, HQ: Binyamina, Israel

## Facilities
- Israel (Binyamina): 125 tonnes/year, Red Drum - OPERATIONAL
- USA (South Carolina): 5,000 tonnes/year planned - FUNDRAISING

## Technology
Only proven commercial ZWD-RAS globally.
Complete nitrogen + carbon cycles = zero water discharge.
Can build anywhere (no coastal requirement).

## Species
- Red Drum: $12-12.50/kg, mild white meat
- Yellowtail Kingfish: $18-20/kg, sushi-grade premium`
