package models

// SeedProducts is the catalog written on first access to the products collection.
func SeedProducts() []Product {
	return []Product{
		{
			ID:          "1",
			Name:        "Lumina Noise-Cancelling Headphones",
			Description: "Experience pure sound with our industry-leading noise cancellation technology. 30-hour battery life.",
			Price:       299.99,
			Category:    "Electronics",
			Image:       "https://picsum.photos/400/400?random=1",
			Stock:       45,
			Rating:      4.8,
			Reviews:     124,
		},
		{
			ID:          "2",
			Name:        "Ergonomic Mesh Office Chair",
			Description: "Designed for comfort and productivity. Fully adjustable lumbar support and breathability.",
			Price:       189.50,
			Category:    "Furniture",
			Image:       "https://picsum.photos/400/400?random=2",
			Stock:       20,
			Rating:      4.5,
			Reviews:     89,
		},
		{
			ID:          "3",
			Name:        "Smart Fitness Watch Pro",
			Description: "Track your health metrics, workouts, and sleep patterns with precision. Waterproof up to 50m.",
			Price:       149.00,
			Category:    "Electronics",
			Image:       "https://picsum.photos/400/400?random=3",
			Stock:       100,
			Rating:      4.6,
			Reviews:     210,
		},
		{
			ID:          "4",
			Name:        "Organic Cotton T-Shirt",
			Description: "Soft, sustainable, and stylish. Made from 100% organic cotton for a comfortable fit.",
			Price:       29.99,
			Category:    "Clothing",
			Image:       "https://picsum.photos/400/400?random=4",
			Stock:       200,
			Rating:      4.2,
			Reviews:     55,
		},
		{
			ID:          "5",
			Name:        "Minimalist Leather Wallet",
			Description: "Crafted from premium full-grain leather. Slim profile with RFID protection.",
			Price:       45.00,
			Category:    "Accessories",
			Image:       "https://picsum.photos/400/400?random=5",
			Stock:       60,
			Rating:      4.9,
			Reviews:     340,
		},
		{
			ID:          "6",
			Name:        "4K Ultra HD Monitor 27\"",
			Description: "Stunning visuals with HDR support. Perfect for creators and gamers alike.",
			Price:       349.99,
			Category:    "Electronics",
			Image:       "https://picsum.photos/400/400?random=6",
			Stock:       15,
			Rating:      4.7,
			Reviews:     76,
		},
	}
}
