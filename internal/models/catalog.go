package models

// Fixed form catalogs. Display order is the catalog order, never the
// selection order.

// Activities selectable on the record form.
var Activities = []string{
	"工作", "運動", "学習", "自由遊び", "SST",
	"おやつ", "外出", "音楽", "調理",
}

// PickupMethods selectable on the record form (single-select).
var PickupMethods = []string{"送迎車", "保護者送迎", "自力通所", "その他"}

// DomainTags are the five fixed support-area categories classifying both
// children's goals and phrase templates.
var DomainTags = []string{
	"健康・生活",
	"運動・感覚",
	"認知・行動",
	"言語・コミュニケーション",
	"人間関係・社会性",
}

// KnownActivity reports whether the value is part of the activity catalog.
func KnownActivity(v string) bool {
	for _, a := range Activities {
		if a == v {
			return true
		}
	}
	return false
}

// KnownPickupMethod reports whether the value is part of the pickup catalog.
func KnownPickupMethod(v string) bool {
	for _, m := range PickupMethods {
		if m == v {
			return true
		}
	}
	return false
}
