package simplifiedtax

import "strings"

// ActivityCategory groups licensed activities as in Annex 1 of the License Law.
type ActivityCategory string

const (
	CategoryHealthcare     ActivityCategory = "healthcare"
	CategoryEducation      ActivityCategory = "education"
	CategoryCommunications ActivityCategory = "communications"
	CategoryConstruction   ActivityCategory = "construction"
	CategoryFinancial      ActivityCategory = "financial"
	CategorySecurity       ActivityCategory = "security"
	CategoryProfessional   ActivityCategory = "professional"
	CategoryManufacturing  ActivityCategory = "manufacturing"
	CategoryTransport      ActivityCategory = "transport"
	CategoryOther          ActivityCategory = "other"
)

// CategoryInfo names a category in both languages.
type CategoryInfo struct {
	Code   ActivityCategory
	NameAZ string
	NameEN string
}

// Categories lists the catalogue categories in display order.
var Categories = []CategoryInfo{
	{CategoryHealthcare, "Səhiyyə sahəsi", "Healthcare"},
	{CategoryEducation, "Təhsil sahəsi", "Education"},
	{CategoryCommunications, "Rabitə sahəsi", "Communications"},
	{CategoryConstruction, "Tikinti sahəsi", "Construction"},
	{CategoryFinancial, "Maliyyə sahəsi", "Financial"},
	{CategorySecurity, "Təhlükəsizlik sahəsi", "Security"},
	{CategoryProfessional, "Peşəkar xidmətlər", "Professional Services"},
	{CategoryManufacturing, "İstehsal sahəsi", "Manufacturing"},
	{CategoryTransport, "Nəqliyyat sahəsi", "Transport"},
	{CategoryOther, "Digər", "Other"},
}

// LicensedActivity is one catalogue entry.
type LicensedActivity struct {
	Code         string
	NameAZ       string
	NameEN       string
	Category     ActivityCategory
	Disqualifies bool
}

var licensedActivities = []LicensedActivity{
	{"private_medical", "Özəl tibb fəaliyyəti", "Private medical activity", CategoryHealthcare, true},
	{"pharmaceutical", "Əczaçılıq fəaliyyəti", "Pharmaceutical activity", CategoryHealthcare, true},
	{"veterinary", "Baytarlıq fəaliyyəti", "Veterinary activity", CategoryHealthcare, true},
	{"medical_equipment", "Tibbi avadanlıqların istehsalı və satışı", "Medical equipment production and sales", CategoryHealthcare, true},

	{"education", "Təhsil fəaliyyəti (ali, orta ixtisas, peşə)", "Education activity (higher, secondary, vocational)", CategoryEducation, true},
	{"driving_school", "Sürücülük kursları", "Driving schools", CategoryEducation, true},

	{"communications", "Rabitə xidmətləri", "Communication services", CategoryCommunications, true},
	{"telecom", "Telekommunikasiya xidmətləri", "Telecommunication services", CategoryCommunications, true},
	{"postal", "Poçt rabitəsi xidmətləri", "Postal communication services", CategoryCommunications, true},
	{"broadcasting", "Televiziya və radio yayımı", "Television and radio broadcasting", CategoryCommunications, true},

	{"construction_survey", "Tikintisinə icazə tələb olunan bina və qurğuların mühəndis axtarışları", "Engineering surveys for permit-required buildings", CategoryConstruction, true},
	{"construction_install", "Tikintisinə icazə tələb olunan bina və qurğuların tikinti-quraşdırma işləri", "Construction-installation works for permit-required buildings", CategoryConstruction, true},
	{"construction_design", "Tikintisinə icazə tələb olunan bina və qurğuların layihələndirilməsi", "Design of permit-required buildings", CategoryConstruction, true},

	{"banking", "Bank fəaliyyəti", "Banking activity", CategoryFinancial, true},
	{"insurance", "Sığorta fəaliyyəti", "Insurance activity", CategoryFinancial, true},
	{"securities", "Qiymətli kağızlar bazarında peşəkar fəaliyyət", "Professional activity in securities market", CategoryFinancial, true},
	{"auditing", "Audit xidməti", "Auditing services", CategoryFinancial, true},

	{"fire_protection", "Yanğından mühafizə fəaliyyəti", "Fire protection activity", CategorySecurity, true},
	{"security_services", "Özəl mühafizə fəaliyyəti", "Private security services", CategorySecurity, true},
	{"detective", "Özəl detektiv fəaliyyəti", "Private detective activity", CategorySecurity, true},

	{"notary", "Notariat fəaliyyəti", "Notary activity", CategoryProfessional, true},
	{"legal_services", "Vəkillik fəaliyyəti", "Legal services / Advocacy", CategoryProfessional, true},
	{"customs_broker", "Gömrük brokeri fəaliyyəti", "Customs broker activity", CategoryProfessional, true},
	{"appraisal", "Qiymətləndirmə fəaliyyəti", "Appraisal/Valuation activity", CategoryProfessional, true},

	{"alcohol_production", "Spirtli içkilərin istehsalı", "Alcoholic beverages production", CategoryManufacturing, true},
	{"tobacco_production", "Tütün məmulatlarının istehsalı", "Tobacco products production", CategoryManufacturing, true},
	{"weapons", "Silah və döyüş sursatının istehsalı və satışı", "Weapons and ammunition production/sales", CategoryManufacturing, true},
	{"explosives", "Partlayıcı maddələrin istehsalı və satışı", "Explosives production and sales", CategoryManufacturing, true},

	{"aviation", "Aviasiya fəaliyyəti", "Aviation activity", CategoryTransport, true},
	{"maritime", "Dəniz nəqliyyatı fəaliyyəti", "Maritime transport activity", CategoryTransport, true},
	{"dangerous_goods", "Təhlükəli yüklərin daşınması", "Dangerous goods transportation", CategoryTransport, true},

	{"gambling", "Qumar oyunlarının təşkili", "Gambling organization", CategoryOther, true},
	{"lottery", "Lotereya fəaliyyəti", "Lottery activity", CategoryOther, true},
	{"tourism", "Turizm fəaliyyəti", "Tourism activity", CategoryOther, true},
	{"employment_agency", "Məşğulluq agentliyi fəaliyyəti", "Employment agency activity", CategoryOther, true},
	{"geological", "Geoloji fəaliyyət", "Geological activity", CategoryOther, true},
	{"other", "Digər lisenziyalı fəaliyyət", "Other licensed activity", CategoryOther, true},
}

var activityIndex = func() map[string]int {
	idx := make(map[string]int, len(licensedActivities))
	for i, a := range licensedActivities {
		idx[a.Code] = i
	}
	return idx
}()

// LookupLicensedActivity finds a catalogue entry by code.
func LookupLicensedActivity(code string) (LicensedActivity, bool) {
	i, ok := activityIndex[code]
	if !ok {
		return LicensedActivity{}, false
	}
	return licensedActivities[i], true
}

// ActivityQuery filters the catalogue. Zero values match everything.
type ActivityQuery struct {
	Search   string
	Category ActivityCategory
}

// LicensedActivities returns the catalogue entries matching q in catalogue
// order. Search is case-insensitive over both names.
func LicensedActivities(q ActivityQuery) []LicensedActivity {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]LicensedActivity, 0, len(licensedActivities))
	for _, a := range licensedActivities {
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.NameAZ), needle) &&
			!strings.Contains(strings.ToLower(a.NameEN), needle) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ValidCategory reports whether c is a known catalogue category.
func ValidCategory(c ActivityCategory) bool {
	for _, info := range Categories {
		if info.Code == c {
			return true
		}
	}
	return false
}
