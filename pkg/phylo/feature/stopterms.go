package feature

// DefaultStopterms returns the built-in stop-term list: common English
// function words plus generic robotics vocabulary that appears in
// nearly every record and carries no taxonomic signal. Registries may
// override the list wholesale.
func DefaultStopterms() []string {
	return []string{
		// English function words
		"a", "an", "the", "and", "or", "but", "not", "no", "nor",
		"of", "in", "on", "at", "to", "for", "with", "from", "by",
		"as", "is", "are", "was", "were", "be", "been", "being",
		"has", "have", "had", "do", "does", "did", "done",
		"can", "could", "will", "would", "shall", "should", "may", "might", "must",
		"it", "its", "this", "that", "these", "those",
		"they", "them", "their", "there", "then", "than",
		"such", "so", "some", "any", "all", "each", "every", "both", "few",
		"more", "most", "other", "another", "same", "own", "too", "very", "just",
		"into", "onto", "through", "during", "before", "after",
		"above", "below", "between", "under", "over", "again", "further",
		"once", "here", "when", "where", "why", "how",
		"what", "which", "who", "whom", "while", "about", "against",
		"also", "because", "until", "up", "down", "out", "off", "only",
		"via", "per", "etc", "eg", "ie",
		// Generic robotics vocabulary
		"robot", "robots", "robotic", "robotics",
		"system", "systems", "device", "devices",
		"machine", "machines", "unit", "units",
		"platform", "platforms",
		"designed", "capable", "various", "based", "using", "used", "use",
	}
}
