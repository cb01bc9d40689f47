package stubapi

import (
	"fmt"
	"time"

	"gaming-storefront/internal/domain"
)

// Demo accounts created by Seed.
const (
	DemoAdminEmail    = "admin@storefront.local"
	DemoAdminPassword = "admin123"
	DemoUserEmail     = "player@storefront.local"
	DemoUserPassword  = "player123"
)

type seedProduct struct {
	en, ar   string
	category string
	price    float64
	discount float64
	stock    int
	rating   float64
	votes    int
}

var seedCatalog = []seedProduct{
	{"PlayStation 5 Console", "جهاز بلايستيشن 5", "PS5", 499, 0, 12, 4.8, 2140},
	{"DualSense Wireless Controller", "يد تحكم دول سينس لاسلكية", "PS5", 69, 10, 40, 4.7, 1830},
	{"Spider-Man 2", "سبايدر مان 2", "PS5", 69, 25, 25, 4.6, 980},
	{"God of War Ragnarok", "إله الحرب راغناروك", "PS5", 59, 30, 18, 4.9, 1520},
	{"Gran Turismo 7", "جران توريزمو 7", "PS5", 49, 0, 0, 4.4, 610},
	{"PS5 Pulse 3D Headset", "سماعة بلس ثري دي", "PS5", 99, 15, 9, 4.2, 430},
	{"Xbox Series X", "إكس بوكس سيريس إكس", "Xbox", 499, 5, 7, 4.7, 1290},
	{"Xbox Wireless Controller", "يد تحكم إكس بوكس لاسلكية", "Xbox", 59, 0, 33, 4.5, 870},
	{"Forza Horizon 5", "فورزا هورايزن 5", "Xbox", 39, 40, 21, 4.8, 1340},
	{"Halo Infinite", "هيلو إنفينيت", "Xbox", 29, 50, 14, 4.1, 720},
	{"Nintendo Switch OLED", "نينتندو سويتش أوليد", "Switch", 349, 0, 16, 4.8, 1660},
	{"The Legend of Zelda: Tears of the Kingdom", "أسطورة زيلدا: دموع المملكة", "Switch", 69, 0, 27, 4.9, 2010},
	{"Mario Kart 8 Deluxe", "ماريو كارت 8 ديلوكس", "Switch", 59, 10, 38, 4.8, 1750},
	{"Joy-Con Pair", "زوج جوي كون", "Switch", 79, 0, 0, 4.3, 540},
	{"Mechanical Gaming Keyboard", "لوحة مفاتيح ميكانيكية للألعاب", "PC", 129, 20, 11, 4.5, 390},
	{"Wireless Gaming Mouse", "فأرة ألعاب لاسلكية", "PC", 79, 0, 24, 4.6, 450},
	{"27\" 165Hz Gaming Monitor", "شاشة ألعاب 27 بوصة 165 هرتز", "PC", 299, 12, 6, 4.4, 280},
	{"Elden Ring", "إلدن رينغ", "PC", 59, 35, 30, 4.9, 2300},
}

// Seed loads the demo catalog and accounts into mem. Products get creation
// times one hour apart, newest last in the list above.
func Seed(mem *Memory, now time.Time) error {
	base := now.Add(-time.Duration(len(seedCatalog)) * time.Hour)
	for i, s := range seedCatalog {
		mem.PutProduct(domain.Product{
			ID:          fmt.Sprintf("prd-%03d", i+1),
			Name:        domain.LocalizedText{En: s.en, Ar: s.ar},
			Description: domain.LocalizedText{En: s.en + " for " + s.category + ".", Ar: s.ar},
			Price:       s.price,
			Discount:    s.discount,
			Stock:       s.stock,
			Category:    s.category,
			Rating:      domain.Rating{Average: s.rating, Count: s.votes},
			Images:      []domain.Image{{URL: fmt.Sprintf("https://cdn.storefront.local/products/prd-%03d.jpg", i+1)}},
			CreatedAt:   base.Add(time.Duration(i) * time.Hour).UTC(),
		})
	}

	accounts := []struct {
		name, email, password, role string
	}{
		{"Store Admin", DemoAdminEmail, DemoAdminPassword, domain.RoleAdmin},
		{"Demo Player", DemoUserEmail, DemoUserPassword, domain.RoleUser},
	}
	for _, a := range accounts {
		if _, err := mem.CreateAccount(a.name, a.email, a.password, a.role, ""); err != nil {
			return fmt.Errorf("seed account %s: %w", a.email, err)
		}
		if err := mem.MarkVerified(a.email); err != nil {
			return fmt.Errorf("seed account %s: %w", a.email, err)
		}
	}
	return nil
}
