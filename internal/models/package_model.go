package models

// TravelPackage is a catalog entry offered during onboarding
// (card, insurance, flight bundles and so on).
type TravelPackage struct {
	ID          string   `json:"id" firestore:"-"` // Firestore document ID
	Title       string   `json:"title" firestore:"title"`
	Description string   `json:"description" firestore:"description"`
	Icon        string   `json:"icon" firestore:"icon"`
	Color       string   `json:"color" firestore:"color"`
	Gradient    []string `json:"gradient" firestore:"gradient"`
}
