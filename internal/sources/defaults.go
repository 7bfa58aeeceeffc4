package sources

import "github.com/bilgisen/aidigest/internal/models"

// Curated AI/ML feeds. Category is a coarse region tag.
var defaultSources = []models.Source{
	{Name: "OpenAI Blog", URL: "https://openai.com/blog/rss.xml", Category: "North America"},
	{Name: "Google AI Blog", URL: "https://ai.googleblog.com/feeds/posts/default", Category: "North America"},
	{Name: "DeepMind", URL: "https://deepmind.google/discover/blog/feed.xml", Category: "Europe"},
	{Name: "Anthropic", URL: "https://www.anthropic.com/news.xml", Category: "North America"},
	{Name: "Hugging Face Blog", URL: "https://huggingface.co/blog/feed.xml", Category: "Europe"},
	{Name: "Stability AI", URL: "https://stability.ai/blog/rss.xml", Category: "Europe"},
	{Name: "NVIDIA Technical Blog - AI", URL: "https://developer.nvidia.com/blog/tag/ai/feed/", Category: "North America"},
	{Name: "Berkeley BAIR Blog", URL: "https://bair.berkeley.edu/blog/feed.xml", Category: "North America"},
	{Name: "Stanford HAI", URL: "https://hai.stanford.edu/news/feed", Category: "North America"},
	{Name: "MIT News - AI", URL: "https://news.mit.edu/topic/artificial-intelligence2-rss.xml", Category: "North America"},
	{Name: "Allen AI (AI2)", URL: "https://allenai.org/news/rss.xml", Category: "North America"},
	{Name: "Papers With Code - Daily", URL: "https://paperswithcode.com/news/daily/rss", Category: "Global"},
	{Name: "The Gradient", URL: "https://thegradient.pub/rss/", Category: "Global"},
	{Name: "TechCrunch AI", URL: "https://techcrunch.com/tag/artificial-intelligence/feed/", Category: "North America"},
	{Name: "The Verge AI", URL: "https://www.theverge.com/artificial-intelligence/rss/index.xml", Category: "North America"},
	{Name: "NYT - AI", URL: "https://rss.nytimes.com/services/xml/rss/nyt/ArtificialIntelligence.xml", Category: "North America"},
	{Name: "VentureBeat AI", URL: "https://venturebeat.com/category/ai/feed/", Category: "North America"},
	{Name: "Preferred Networks Tech Blog", URL: "https://tech.preferred.jp/en/blog/rss.xml", Category: "Asia"},
	{Name: "LINE Engineering (EN)", URL: "https://engineering.linecorp.com/en/blog/rss/", Category: "Asia"},
	{Name: "Sony AI Blog", URL: "https://ai.sony/blog/index.xml", Category: "Asia"},
}
