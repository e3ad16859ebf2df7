package model

// Справочники: интересы, языки и страны с переводами.

type Interest struct {
	Base

	LanguageCode       string `gorm:"not null" json:"languageCode"`
	Interest           string `gorm:"not null;index" json:"interest"`
	TranslatedInterest string `gorm:"not null" json:"translatedInterest"`
}

type Language struct {
	Base

	Name         string `gorm:"not null" json:"name"`
	Language     string `gorm:"not null" json:"language"`
	LanguageCode string `gorm:"not null;index" json:"languageCode"`
}

type Country struct {
	Base

	LanguageCode      string `gorm:"not null" json:"languageCode"`
	Country           string `gorm:"not null;index" json:"country"`
	TranslatedCountry string `gorm:"not null" json:"translatedCountry"`
}
