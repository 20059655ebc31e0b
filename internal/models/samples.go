package models

// SampleRecords is shown when the store is reachable but holds no records yet.
func SampleRecords() []Record {
	return []Record{
		{ID: 1, Thumbnail: "https://picsum.photos/40/60?random=1", Name: "Premium Headphones",
			Metrics: Metrics{Duration: "04:12", AvgWatch: "01:45", Retention: "62%", Views: "12.4K", Likes: "4.2K", Bookmarks: "1.2K",
				Comments: "342", Shares: "89", Efficiency: "92%", Products: "12", CPM: "2.4", CPE: "0.1"},
			Status: StatusUnpinned, MainProduct: MainProductJulaherb, Date: "2024-01-15"},
		{ID: 2, Thumbnail: "https://picsum.photos/40/60?random=2", Name: "Fitness Watch V2",
			Metrics: Metrics{Duration: "03:45", AvgWatch: "01:12", Retention: "55%", Views: "8.2K", Likes: "2.1K", Bookmarks: "540",
				Comments: "128", Shares: "42", Efficiency: "88%", Products: "8", CPM: "3.1", CPE: "0.2"},
			Status: StatusPinned, MainProduct: MainProductJDENT, Date: "2024-02-20"},
		{ID: 3, Thumbnail: "https://picsum.photos/40/60?random=3", Name: "Cotton T-Shirt",
			Metrics: Metrics{Duration: "02:30", AvgWatch: "00:58", Retention: "42%", Views: "5.1K", Likes: "1.2K", Bookmarks: "320",
				Comments: "86", Shares: "21", Efficiency: "75%", Products: "24", CPM: "1.8", CPE: "0.1"},
			Status: StatusPinned, MainProduct: MainProductJarvit, Date: "2024-03-05"},
		{ID: 4, Thumbnail: "https://picsum.photos/40/60?random=4", Name: "Leather Wallet",
			Metrics: Metrics{Duration: "03:15", AvgWatch: "01:22", Retention: "48%", Views: "4.2K", Likes: "980", Bookmarks: "210",
				Comments: "45", Shares: "12", Efficiency: "68%", Products: "5", CPM: "2.2", CPE: "0.3"},
			Status: StatusPinned, MainProduct: MainProductJulaherb, Date: "2024-04-10"},
		{ID: 5, Thumbnail: "https://picsum.photos/40/60?random=5", Name: "Power Bank 20k",
			Metrics: Metrics{Duration: "05:00", AvgWatch: "02:30", Retention: "70%", Views: "3.8K", Likes: "850", Bookmarks: "190",
				Comments: "32", Shares: "8", Efficiency: "82%", Products: "3", CPM: "2.5", CPE: "0.2"},
			Status: StatusPinned, MainProduct: MainProductJDENT, Date: "2024-05-12"},
		{ID: 6, Thumbnail: "https://picsum.photos/40/60?random=6", Name: "BT Speaker",
			Metrics: Metrics{Duration: "02:15", AvgWatch: "00:45", Retention: "35%", Views: "2.9K", Likes: "640", Bookmarks: "150",
				Comments: "28", Shares: "5", Efficiency: "79%", Products: "10", CPM: "2.0", CPE: "0.2"},
			Status: StatusPinned, MainProduct: MainProductJarvit, Date: "2024-06-18"},
	}
}
