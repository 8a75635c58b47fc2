package seo

import (
	"encoding/json"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/locale"
)

// homeNames labels the first breadcrumb.
var homeNames = map[string]string{
	"en": "Home",
	"es": "Inicio",
	"pt": "Início",
	"fr": "Accueil",
	"de": "Startseite",
	"nl": "Home",
}

// categoryNames labels category breadcrumbs.
var categoryNames = map[content.Category]map[string]string{
	content.CategoryFinancial: {
		"en": "Financial Calculators", "es": "Calculadoras Financieras", "pt": "Calculadoras Financeiras",
		"fr": "Calculateurs Financiers", "de": "Finanzrechner", "nl": "Financiële rekenmachines",
	},
	content.CategoryHealth: {
		"en": "Health & Fitness Calculators", "es": "Calculadoras de Salud y Fitness", "pt": "Calculadoras de Saúde e Fitness",
		"fr": "Calculateurs Santé et Fitness", "de": "Gesundheits- und Fitnessrechner", "nl": "Gezondheid- en fitnessrekenmachines",
	},
	content.CategoryMath: {
		"en": "Math Calculators", "es": "Calculadoras Matemáticas", "pt": "Calculadoras Matemáticas",
		"fr": "Calculateurs Mathématiques", "de": "Mathematikrechner", "nl": "Wiskunderekenmachines",
	},
	content.CategoryConversion: {
		"en": "Conversion Calculators", "es": "Calculadoras de Conversión", "pt": "Calculadoras de Conversão",
		"fr": "Calculateurs de Conversion", "de": "Umrechner", "nl": "Omrekenrekenmachines",
	},
	content.CategoryUtility: {
		"en": "Utility Calculators", "es": "Calculadoras de Utilidad", "pt": "Calculadoras de Utilitários",
		"fr": "Calculateurs Utilitaires", "de": "Hilfsrechner", "nl": "Hulprekenmachines",
	},
	content.CategoryLifestyle: {
		"en": "Lifestyle Calculators", "es": "Calculadoras de Estilo de Vida", "pt": "Calculadoras de Estilo de Vida",
		"fr": "Calculateurs Style de Vie", "de": "Lifestyle-Rechner", "nl": "Lifestylerekenmachines",
	},
	content.CategoryOther: {
		"en": "Other Calculators", "es": "Otras Calculadoras", "pt": "Outras Calculadoras",
		"fr": "Autres Calculateurs", "de": "Weitere Rechner", "nl": "Overige rekenmachines",
	},
}

// applicationCategories maps a category to a schema.org applicationCategory.
var applicationCategories = map[content.Category]string{
	content.CategoryFinancial: "FinanceApplication",
	content.CategoryHealth:    "HealthApplication",
}

// HomeName returns the localized home breadcrumb label.
func HomeName(code string) string {
	if name, ok := homeNames[code]; ok {
		return name
	}

	return homeNames["en"]
}

// CategoryName returns the localized category label. Categories without a
// translation fall back to "<Category> Calculators".
func CategoryName(code string, category content.Category) string {
	if names, ok := categoryNames[category]; ok {
		if name, ok := names[code]; ok {
			return name
		}
	}

	return cases.Title(language.English).String(string(category)) + " Calculators"
}

// Breadcrumb is one entry of the breadcrumb trail.
type Breadcrumb struct {
	Name string
	URL  string
}

// Breadcrumbs returns Home -> Category -> Calculator.
func Breadcrumbs(record *content.Record, code string, policy *locale.Policy, site Site, md Metadata) []Breadcrumb {
	prefix := LocalePrefix(site, policy, code)
	home := site.BaseURL + prefix
	if prefix == "" {
		home += "/"
	}

	title := md.Title
	if lc, ok := content.GetLocale(record, code); ok && lc.Title != "" {
		title = lc.Title
	}

	return []Breadcrumb{
		{Name: HomeName(code), URL: home},
		{Name: CategoryName(code, record.Category), URL: CategoryURL(site, policy, code, record.Category)},
		{Name: title, URL: md.CanonicalURL},
	}
}

// Graph is a JSON-LD document.
type Graph struct {
	Context string `json:"@context"`
	Graph   []any  `json:"@graph"`
}

type webSite struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type reference struct {
	ID string `json:"@id"`
}

type webPage struct {
	Type        string    `json:"@type"`
	ID          string    `json:"@id"`
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	InLanguage  string    `json:"inLanguage"`
	IsPartOf    webSite   `json:"isPartOf"`
	Breadcrumb  reference `json:"breadcrumb"`
}

type offer struct {
	Type          string `json:"@type"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
}

type webApplication struct {
	Type                string `json:"@type"`
	Name                string `json:"name"`
	URL                 string `json:"url"`
	Description         string `json:"description"`
	ApplicationCategory string `json:"applicationCategory"`
	OperatingSystem     string `json:"operatingSystem"`
	InLanguage          string `json:"inLanguage"`
	Offers              offer  `json:"offers"`
}

type listItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

type breadcrumbList struct {
	Type            string     `json:"@type"`
	ID              string     `json:"@id"`
	ItemListElement []listItem `json:"itemListElement"`
}

// CalculatorSchema builds the WebPage, WebApplication and BreadcrumbList
// graph for a calculator page.
func CalculatorSchema(record *content.Record, code string, policy *locale.Policy, site Site) Graph {
	md := Generate(record, code, policy, site)

	appCategory, ok := applicationCategories[record.Category]
	if !ok {
		appCategory = "UtilitiesApplication"
	}

	crumbs := Breadcrumbs(record, code, policy, site, md)
	items := make([]listItem, len(crumbs))
	for i, c := range crumbs {
		items[i] = listItem{Type: "ListItem", Position: i + 1, Name: c.Name, Item: c.URL}
	}

	return Graph{
		Context: "https://schema.org",
		Graph: []any{
			webPage{
				Type:        "WebPage",
				ID:          md.CanonicalURL + "#webpage",
				URL:         md.CanonicalURL,
				Name:        md.Title,
				Description: md.Description,
				InLanguage:  md.InLanguage,
				IsPartOf:    webSite{Type: "WebSite", Name: site.Name, URL: site.BaseURL},
				Breadcrumb:  reference{ID: md.CanonicalURL + "#breadcrumb"},
			},
			webApplication{
				Type:                "WebApplication",
				Name:                md.Title,
				URL:                 md.CanonicalURL,
				Description:         md.Description,
				ApplicationCategory: appCategory,
				OperatingSystem:     "Any",
				InLanguage:          md.InLanguage,
				Offers:              offer{Type: "Offer", Price: "0", PriceCurrency: "USD"},
			},
			breadcrumbList{
				Type:            "BreadcrumbList",
				ID:              md.CanonicalURL + "#breadcrumb",
				ItemListElement: items,
			},
		},
	}
}

// JSON encodes the graph for a <script type="application/ld+json"> element.
func (g Graph) JSON() ([]byte, error) {
	return json.Marshal(g)
}
