package domain

// AxiomEntry is one wallet-tracker import entry in the Axiom JSON format.
type AxiomEntry struct {
	TrackedWalletAddress string   `json:"trackedWalletAddress"`
	Name                 string   `json:"name"`
	Emoji                string   `json:"emoji"`
	AlertsOnToast        bool     `json:"alertsOnToast"`
	AlertsOnBubble       bool     `json:"alertsOnBubble"`
	AlertsOnFeed         bool     `json:"alertsOnFeed"`
	Groups               []string `json:"groups"`
	Sound                string   `json:"sound"`
}
