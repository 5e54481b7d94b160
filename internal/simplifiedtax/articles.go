package simplifiedtax

import pstrings "simtax/pkg/platform/strings"

// articleText holds the Tax Code wording cited in legal basis entries.
var articleText = map[string]string{
	"218":           "Sadələşdirilmiş vergi ödəyicisi olmaq şərtləri",
	"218.1.1":       "Vergi tutulan əməliyyatlar həcmi ardıcıl 12 ayda 200000 manatdan çox olmamalıdır",
	"218.1.2":       "Ticarət və ictimai iaşə fəaliyyəti göstərən vergi ödəyiciləri 200000 manatdan artıq dövriyyə ilə sadələşdirilmiş vergi ödəyə bilər",
	"218.1-1":       "Nağdsız POS əməliyyatları üzrə dövriyyə 0,5 əmsalı ilə nəzərə alınır",
	"218.4.1":       "Sərnişin və yük daşıma fəaliyyəti (taksi daxil) avtomatik olaraq sadələşdirilmiş vergiyə cəlb edilir",
	"218.4.2":       "Mərc oyunları və lotereya fəaliyyəti avtomatik olaraq sadələşdirilmiş vergiyə cəlb edilir",
	"218.4.3":       "Mülkiyyətində olan yaşayış sahəsinin özgəninkiləşdirilməsi avtomatik olaraq sadələşdirilmiş vergiyə cəlb edilir",
	"218.4.4":       "220.10-cu maddədə göstərilən fəaliyyət növləri avtomatik olaraq sadələşdirilmiş vergiyə cəlb edilir",
	"218.4.5":       "Mülkiyyətində olan torpaq sahəsinin özgəninkiləşdirilməsi avtomatik olaraq sadələşdirilmiş vergiyə cəlb edilir",
	"218.5.1":       "Aksizli malların və mütləq markalanan malların istehsalçıları",
	"218.5.2":       "Kredit təşkilatları, sığorta bazarının peşəkar iştirakçıları, investisiya fondları, qiymətli kağızlar bazarının lisenziyalı iştirakçıları, lombardlar",
	"218.5.3":       "Qeyri-dövlət pensiya fondları",
	"218.5.4":       "İcarə və royalti gəliri əldə edən vergi ödəyiciləri",
	"218.5.5":       "Təbii inhisarçılar",
	"218.5.6":       "İlin əvvəlinə əsas vəsaitlərinin qalıq dəyəri 1 000 000 manatdan artıq olan vergi ödəyiciləri",
	"218.5.7":       "Publik hüquqi şəxslər",
	"218.5.8":       "İstehsal fəaliyyəti göstərən və rüblük orta işçi sayı 10 nəfərdən çox olan vergi ödəyiciləri",
	"218.5.9":       "Topdan ticarət fəaliyyəti göstərən vergi ödəyiciləri",
	"218.5.10":      "Hüquqi şəxslərə və ya qeydiyyatda olan sahibkarlara iş görən və ya xidmət göstərən vergi ödəyiciləri",
	"218.5.11":      "Qızıl, zərgərlik məmulatları və almaz satan vergi ödəyiciləri",
	"218.5.12":      "Xəz və dəri məmulatları satan vergi ödəyiciləri",
	"218.5.13":      "Lisenziya tələb olunan fəaliyyət növləri ilə məşğul olan vergi ödəyiciləri (icbari sığorta müqavilələri üzrə xidmət istisna olmaqla)",
	"218.6.1":       "Elektron qaimə-faktura ilə topdan satış əməliyyatları rüblük ticarət əməliyyatlarının 30%-dən çox olmamalıdır",
	"218.6.2":       "Elektron qaimə-faktura ilə B2B əməliyyatları rüblük iş/xidmət əməliyyatlarının 30%-dən çox olmamalıdır",
	"218-1.1.5.1":   "Həmin yaşayış sahəsinin ünvanında azı 3 təqvim ili qeydiyyatda olduqda vergidən azaddır",
	"218-1.1.5.1-1": "3 il ərzində yaşadığını sübut edən və yalnız bir yaşayış sahəsinə malik olan şəxs vergidən azaddır",
	"218-1.1.5.2":   "Ailə üzvündən bağışlama və ya vərəsəlik yolu ilə əldə edilmiş əmlak",
	"218-1.1.5.3":   "Mülkiyyətində olan yaşayış sahəsinin ilk 30 kv.m-i vergidən azaddır",
	"102.1.3.2":     "Ailə üzvləri arasında əmlakın bağışlanması vergidən azaddır",
	"220.1":         "Sadələşdirilmiş verginin dərəcəsi vergi tutulan əməliyyatların həcminin 2 faizi",
	"220.1-1":       "Ticarət və ictimai iaşə üçün 8% (ümumi) və 6% (POS əməliyyatları, 01.01.2026-dan 3 il müddətinə)",
	"220.4":         "Sərnişin və yük daşımaları üzrə sadələşdirilmiş vergi sabit məbləğdə ödənilir",
	"220.6":         "Mərc oyunları və lotereya fəaliyyəti üzrə sadələşdirilmiş vergi",
	"220.8":         "Yaşayış sahəsinin özgəninkiləşdirilməsindən sadələşdirilmiş vergi 1 kv.m üçün 15 manat × zona əmsalı",
	landArticleKey:  "Torpaq sahəsinin özgəninkiləşdirilməsindən sadələşdirilmiş vergi 206.1-1-ci maddəyə əsasən torpaq vergisinin 2 misli",
	"220.10":        "220.10-cu maddədə göstərilən fəaliyyət növləri üzrə sadələşdirilmiş vergi sabit məbləğdə ödənilir",
	"206.1-1":       "Kənd təsərrüfatı torpaqlarının vergisi",
}

// LegalBasis ties a decision to a Tax Code article.
type LegalBasis struct {
	Article     string
	Description string
	SourceURL   string
}

// landArticleKey selects the land-transfer wording of 220.8.
const landArticleKey = "220.8-land"

// cite builds legal basis entries for the given article keys, each cited once.
func (e *Engine) cite(keys ...string) []LegalBasis {
	keys = pstrings.Dedupe(keys)
	out := make([]LegalBasis, 0, len(keys))
	for _, key := range keys {
		article := key
		if key == landArticleKey {
			article = "220.8"
		}
		out = append(out, LegalBasis{
			Article:     article,
			Description: articleText[key],
			SourceURL:   e.params.SourceURL,
		})
	}
	return out
}
