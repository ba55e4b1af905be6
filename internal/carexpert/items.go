package carexpert

// Item kinds, also used as output file stems.
const (
	KindModel         = "models"
	KindProsCons      = "pros_cons"
	KindFAQ           = "faqs"
	KindVariant       = "variants"
	KindSpecification = "specifications"
	KindFeature       = "features"
)

// ModelInfo is the hero section of a model page.
type ModelInfo struct {
	BrandName          string `json:"brandName" csv:"brandName"`
	ModelName          string `json:"modelName" csv:"modelName"`
	ModelDescription   string `json:"modelDescription" csv:"modelDescription"`
	ModelTagline       string `json:"modelTagline" csv:"modelTagline"`
	ModelIsHighlighted string `json:"modelIsHighlighted" csv:"modelIsHighlighted"`
	BodyType           string `json:"bodyType" csv:"bodyType"`
}

func (ModelInfo) Kind() string { return KindModel }

// ProsCons is one pro or con bullet.
type ProsCons struct {
	ModelName       string `json:"modelName" csv:"modelName"`
	ProsConsType    string `json:"prosConsType" csv:"prosConsType"`
	ProsConsContent string `json:"prosConsContent" csv:"prosConsContent"`
}

func (ProsCons) Kind() string { return KindProsCons }

type FAQ struct {
	ModelName   string `json:"modelName" csv:"modelName"`
	FAQQuestion string `json:"faqQuestion" csv:"faqQuestion"`
	FAQAnswer   string `json:"faqAnswer" csv:"faqAnswer"`
}

func (FAQ) Kind() string { return KindFAQ }

type VariantInfo struct {
	ModelName              string `json:"modelName" csv:"modelName"`
	MakeYear               string `json:"makeYear" csv:"makeYear"`
	VariantName            string `json:"variantName" csv:"variantName"`
	VariantPrice           string `json:"variantPrice" csv:"variantPrice"`
	VariantFuelType        string `json:"variantFuelType" csv:"variantFuelType"`
	VariantSeatingCapacity string `json:"variantSeatingCapacity" csv:"variantSeatingCapacity"`
	VariantType            string `json:"variantType" csv:"variantType"`
	VariantIsPopular       string `json:"variantIsPopular" csv:"variantIsPopular"`
	VariantMileage         string `json:"variantMileage" csv:"variantMileage"`
}

func (VariantInfo) Kind() string { return KindVariant }

type Specification struct {
	ModelName                 string `json:"modelName" csv:"modelName"`
	MakeYear                  int    `json:"makeYear" csv:"makeYear"`
	VariantName               string `json:"variantName" csv:"variantName"`
	SpecificationCategoryName string `json:"specificationCategoryName" csv:"specificationCategoryName"`
	SpecificationName         string `json:"specificationName" csv:"specificationName"`
	SpecificationValue        string `json:"specificationValue" csv:"specificationValue"`
}

func (Specification) Kind() string { return KindSpecification }

type Feature struct {
	ModelName            string `json:"modelName" csv:"modelName"`
	MakeYear             int    `json:"makeYear" csv:"makeYear"`
	VariantName          string `json:"variantName" csv:"variantName"`
	FeatureCategoryName  string `json:"featureCategoryName" csv:"featureCategoryName"`
	FeatureName          string `json:"featureName" csv:"featureName"`
	FeatureValue         string `json:"featureValue" csv:"featureValue"`
	FeatureIsHighlighted string `json:"featureIsHighlighted" csv:"featureIsHighlighted"`
}

func (Feature) Kind() string { return KindFeature }

// Item is any extracted record.
type Item interface {
	Kind() string
}
