package diff

import "strings"

// fieldLabels covers the field names the audit snapshots actually use.
// Anything else goes through the snake_case -> Title Case fallback.
var fieldLabels = map[string]string{
	"animal_type":               "Animal Type",
	"hanging_weight_lbs":        "Hanging Weight (lbs)",
	"ground_type":               "Ground Meat Type",
	"ground_package_weight_lbs": "Ground Package Weight (lbs)",
	"patty_size":                "Patty Size",
	"special_instructions":      "Special Instructions",
	"processor_notes":           "Processor Notes",
	"producer_notes":            "Producer Notes",
	"status":                    "Status",
	"is_template":               "Template",
	"template_name":             "Template Name",
	"cut_id":                    "Cut",
	"cut_name":                  "Cut Name",
	"thickness":                 "Thickness",
	"weight_lbs":                "Weight (lbs)",
	"pieces_per_package":        "Pieces per Package",
	"processing_style":          "Processing Style",
	"sort_order":                "Sort Order",
	"reason":                    "Reason",
	"note":                      "Note",
	"removed_cuts":              "Removed Cuts",
	"added_cuts":                "Added Cuts",
	"processor_modifications":   "Processor Modifications",
	"items":                     "Selected Cuts",
	"sausages":                  "Sausage Selections",
	"flavor":                    "Flavor",
	"pounds":                    "Pounds",
	"package_number":            "Package Number",
	"quantity_in_package":       "Quantity in Package",
	"actual_weight_lbs":         "Actual Weight (lbs)",
	"livestock_tracking_id":     "Livestock Tracking ID",
	"processor_added":           "Added by Processor",
	"keep_heart":                "Keep Heart",
	"keep_liver":                "Keep Liver",
	"keep_tongue":               "Keep Tongue",
	"keep_oxtail":               "Keep Oxtail",
	"keep_kidneys":              "Keep Kidneys",
	"keep_tripe":                "Keep Tripe",
	"stew_meat":                 "Stew Meat",
	"short_ribs":                "Short Ribs",
	"soup_bones":                "Soup Bones",
	"bacon_preference":          "Bacon Preference",
	"ham_preference":            "Ham Preference",
	"shoulder_preference":       "Shoulder Preference",
	"keep_jowls":                "Keep Jowls",
	"keep_fat_back":             "Keep Fat Back",
	"keep_lard_fat":             "Keep Lard Fat",
	"min_hanging_weight_lbs":    "Minimum Hanging Weight (lbs)",
	"max_hanging_weight_lbs":    "Maximum Hanging Weight (lbs)",
	"disabled_cuts":             "Disabled Cuts",
	"disabled_sausage_flavors":  "Disabled Sausage Flavors",
	"enabled_animals":           "Enabled Animals",
	"custom_cuts":               "Custom Cuts",
	"processing_fees":           "Processing Fees",
	"default_templates":         "Default Templates",
	"modified_at":               "Modified At",
	"removed_at":                "Removed At",
	"added_at":                  "Added At",
}

// Label resolves a snapshot field name to its display label.
func Label(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return titleCase(field)
}

func titleCase(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
