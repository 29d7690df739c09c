package fields

// Code tables for enumerated fields. Keys are the stored codes.

var ownershipTypes = map[string]string{
	"owned":        "自社所有",
	"leased":       "賃借",
	"owned_rental": "自社（賃貸）",
	"sublease":     "転貸",
}

var yesNo = map[string]string{
	"true":  "有り",
	"false": "無し",
	"yes":   "有り",
	"no":    "無し",
	"1":     "有り",
	"0":     "無し",
}

var availability = map[string]string{
	"true":        "有",
	"false":       "無",
	"available":   "有",
	"unavailable": "無",
	"partial":     "一部有",
}

var serviceTypes = map[string]string{
	"home_care":         "訪問介護",
	"day_service":       "通所介護",
	"short_stay":        "短期入所生活介護",
	"group_home":        "認知症対応型共同生活介護",
	"nursing_home":      "介護老人福祉施設",
	"paid_nursing_home": "介護付有料老人ホーム",
	"serviced_housing":  "サービス付き高齢者向け住宅",
	"small_multi":       "小規模多機能型居宅介護",
}

var facilityStatuses = map[string]string{
	"preparing": "開設準備中",
	"active":    "運営中",
	"suspended": "休止中",
	"closed":    "廃止",
}

var structureTypes = map[string]string{
	"rc":          "鉄筋コンクリート造",
	"src":         "鉄骨鉄筋コンクリート造",
	"steel":       "鉄骨造",
	"light_steel": "軽量鉄骨造",
	"wood":        "木造",
}

var fireResistance = map[string]string{
	"fireproof":       "耐火建築物",
	"quasi_fireproof": "準耐火建築物",
	"other":           "その他",
}

var earthquakeStandards = map[string]string{
	"new": "新耐震基準",
	"old": "旧耐震基準",
}

var electricalContractTypes = map[string]string{
	"low_voltage":        "低圧",
	"high_voltage":       "高圧",
	"extra_high_voltage": "特別高圧",
}

var waterSupplyTypes = map[string]string{
	"direct":  "直結給水",
	"tank":    "受水槽",
	"booster": "増圧直結給水",
}

var sewerTypes = map[string]string{
	"public_sewer": "公共下水",
	"septic_tank":  "浄化槽",
}

var gasTypes = map[string]string{
	"city": "都市ガス",
	"lp":   "LPガス",
	"none": "なし",
}

var hvacSystemTypes = map[string]string{
	"central":    "中央方式",
	"individual": "個別方式",
	"mixed":      "併用",
}

var ledConversion = map[string]string{
	"full":    "全面LED",
	"partial": "一部LED",
	"none":    "未実施",
}

var securitySystemTypes = map[string]string{
	"mechanical": "機械警備",
	"resident":   "常駐警備",
	"none":       "なし",
}

var hazardAreas = map[string]string{
	"none":      "該当なし",
	"flood":     "浸水想定区域",
	"landslide": "土砂災害警戒区域",
	"tsunami":   "津波浸水想定区域",
}

var maintenanceCategories = map[string]string{
	"repair":      "修繕",
	"renovation":  "改修",
	"inspection":  "点検",
	"replacement": "更新",
}
