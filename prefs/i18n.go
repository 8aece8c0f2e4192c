package prefs

// Language is one of the two supported UI locales.
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// Direction is the document text direction for the language.
func (l Language) Direction() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

func (l Language) other() Language {
	if l == English {
		return Arabic
	}
	return English
}

func (l Language) valid() bool {
	return l == English || l == Arabic
}

// Theme is the UI colour scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

func (t Theme) other() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

func (t Theme) valid() bool {
	return t == Light || t == Dark
}

var translations = map[Language]map[string]string{
	English: {
		"home":                "Home",
		"categories":          "Categories",
		"about":               "About",
		"contact":             "Contact",
		"search":              "Search posts...",
		"readMore":            "Read More",
		"minRead":             "min read",
		"share":               "Share",
		"bookmark":            "Bookmark",
		"bookmarks":           "Bookmarks",
		"author":              "Author",
		"publishedOn":         "Published on",
		"relatedPosts":        "Related Posts",
		"subscribeNewsletter": "Subscribe to our newsletter",
		"emailPlaceholder":    "Enter your email",
		"subscribe":           "Subscribe",
		"followUs":            "Follow Us",
		"copyright":           "© 2024 DevScribe. All rights reserved.",
		"privacy":             "Privacy Policy",
		"terms":               "Terms of Service",
		"heroTitle":           "Welcome to DevScribe",
		"heroSubtitle":        "Discover insights, tutorials, and stories from the world of development",
		"explore":             "Explore Posts",
		"latestPosts":         "Latest Posts",
		"allCategories":       "All Categories",
		"noPostsFound":        "No posts found",
		"backToHome":          "Back to Home",
	},
	Arabic: {
		"home":                "الرئيسية",
		"categories":          "التصنيفات",
		"about":               "حول",
		"contact":             "اتصل بنا",
		"search":              "البحث في المقالات...",
		"readMore":            "اقرأ المزيد",
		"minRead":             "دقيقة قراءة",
		"share":               "شارك",
		"bookmark":            "إشارة مرجعية",
		"bookmarks":           "الإشارات المرجعية",
		"author":              "الكاتب",
		"publishedOn":         "نُشر في",
		"relatedPosts":        "مقالات ذات صلة",
		"subscribeNewsletter": "اشترك في نشرتنا الإخبارية",
		"emailPlaceholder":    "أدخل بريدك الإلكتروني",
		"subscribe":           "اشترك",
		"followUs":            "تابعنا",
		"copyright":           "© 2024 DevScribe. جميع الحقوق محفوظة.",
		"privacy":             "سياسة الخصوصية",
		"terms":               "شروط الخدمة",
		"heroTitle":           "مرحباً بك في DevScribe",
		"heroSubtitle":        "اكتشف الأفكار والدروس والقصص من عالم التطوير",
		"explore":             "استكشف المقالات",
		"latestPosts":         "أحدث المقالات",
		"allCategories":       "جميع التصنيفات",
		"noPostsFound":        "لم يتم العثور على مقالات",
		"backToHome":          "العودة للرئيسية",
	},
}

// Translate looks key up in the table for lang. A missing entry yields the
// key itself.
func Translate(lang Language, key string) string {
	if s, ok := translations[lang][key]; ok && s != "" {
		return s
	}
	return key
}

// Keys lists every translation key of the primary language.
func Keys() []string {
	keys := make([]string, 0, len(translations[English]))
	for k := range translations[English] {
		keys = append(keys, k)
	}
	return keys
}
