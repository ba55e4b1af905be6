package carexpert

// CSS selectors for carexpert.com.au markup. Class names are build hashes
// and change when the site redeploys; keep them here.
const (
	selModelName        = "h1[class*='_1ivmml5i']"
	selModelNameHero    = "h1[class*='_19m0jur1v']"
	selDescription      = "div[class*='_19m0jur22'] p"
	selDescriptionHero  = "div[class*='_19m0jurb'] p[class*='m7p3v71']"
	selStatsContainer   = "div[class*='_19m0jurx']"
	selVehicleSpec      = "div#vehicle-spec"
	selProsConsSection  = "div[class*='_35h4t0m']"
	selProsConsColumn   = "div[class*='_1ivmml5yu']"
	selProsConsList     = "ul[class*='_6h1tsc2']"
	selVariantList      = "div[class*='_1ivmml5yu'][class*='_1ivmml517l'] a[href*='/features-and-specs']"
	selVariantLinks     = "a[href*='/features-and-specs']"
	selVariantCard      = "a[class*='_2mb3ted'][class*='_18bmbcy6']"
	selVariantCardPrice = "div[class*='_18bmbcy4']"

	selAccordion         = "div[data-testid='accordion']"
	selAccordionTitle    = "span[data-testid='accordion-header-title-text']"
	selAccordionButton   = "button[data-testid='accordion-header-button']"
	selAccordionContent  = "div[data-testid='accordion-content']"
	selAnswerParagraph   = "p[class*='m7p3v71']"
	selConfigurations    = "#scrollable-configuration-sticky-header"
	selConfigArticle     = "article[class*='_1ivmml53vu']"
	selConfigName        = "p[class*='eh3zt05']"
	selSpecSections      = "div[id^='vehicle-spec-']"
	selSectionOrCategory = "button[aria-expanded][class*='_1ivmml5'], div[id^='vehicle-spec-']"

	selCompareSection = "div[class*='_1egt6kt9']"
	selCompareColumn  = "div[class*='_1egt6kth']"
	selCompareTitle   = "div[class*='_1ivmml5uy']"
	selCompareContent = "div[class*='_1ivmml5ur']"
)

const (
	textReadMore   = "Read More"
	textShowStats  = "Show Stats"
	textBodyTypes  = "Body Types"
	textFAQHeading = "Frequently Asked Questions"
	minVariantPath = 6 // slashes in an absolute variant URL
)
