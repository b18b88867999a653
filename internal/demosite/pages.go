package demosite

// PageVersion is one rendition of a demo page.
type PageVersion struct {
	Title string
	HTML  string
}

// PageDefinition is a demo page whose content can be switched between
// versions at runtime, so repeated analyses produce a history to diff.
type PageDefinition struct {
	Path        string
	Description string
	Versions    map[int]PageVersion
}

// AllPages returns every demo page.
func AllPages() []PageDefinition {
	return []PageDefinition{
		shopPage(),
		prizePage(),
		blogPage(),
	}
}

func shopPage() PageDefinition {
	return PageDefinition{
		Path:        "/shop",
		Description: "An ordinary online store; version 2 is the same store after a defacement",
		Versions: map[int]PageVersion{
			1: {
				Title: "Acme Hardware",
				HTML: `<!DOCTYPE html>
<html>
<head><title>Acme Hardware</title><style>body { font-family: sans-serif; }</style></head>
<body>
  <header><img src="/static/logo.png" alt="Acme"></header>
  <h1>Acme Hardware</h1>
  <p>Tools, fasteners and garden supplies shipped within two working days.</p>
  <img src="/static/hammer.jpg" alt="Hammer">
  <img src="/static/drill.jpg" alt="Drill">
  <footer>
    <a href="/privacy">Privacy policy</a> | <a href="/terms">Terms of service</a> |
    <a href="/contact">Contact us</a> | Copyright 2024 Acme Hardware Ltd
  </footer>
</body>
</html>`,
			},
			2: {
				Title: "Acme Hardware",
				HTML: `<!DOCTYPE html>
<html>
<head><title>Acme Hardware</title></head>
<body>
  <h1>Congratulations, you are our lucky winner!</h1>
  <p>Claim your free prize now. Verify your account and confirm your bank
  details to receive the cash reward. This offer expires in 10 minutes, act now!</p>
  <script>setTimeout(function () { location.href = "/claim"; }, 5000);</script>
</body>
</html>`,
			},
		},
	}
}

func prizePage() PageDefinition {
	return PageDefinition{
		Path:        "/prize",
		Description: "A typical prize scam landing page",
		Versions: map[int]PageVersion{
			1: {
				Title: "You won!",
				HTML: `<!DOCTYPE html>
<html>
<head><title>You won!</title></head>
<body>
  <h1>WINNER! Free iPhone giveaway</h1>
  <p>Urgent: your prize is waiting. Pay a small shipping fee with gift card or
  bitcoin to claim. Limited time offer, 100% guaranteed, risk free.</p>
  <img src="/static/phone.png">
</body>
</html>`,
			},
		},
	}
}

func blogPage() PageDefinition {
	return PageDefinition{
		Path:        "/blog",
		Description: "A text-only engineering blog post",
		Versions: map[int]PageVersion{
			1: {
				Title: "Notes on connection pooling",
				HTML: `<!DOCTYPE html>
<html>
<head><title>Notes on connection pooling</title></head>
<body>
  <article>
    <h1>Notes on connection pooling</h1>
    <p>This post walks through the documentation of our database driver and how
    we sized the pool for the reporting service. See the about page for the team.</p>
  </article>
</body>
</html>`,
			},
			2: {
				Title: "Notes on connection pooling",
				HTML: `<!DOCTYPE html>
<html>
<head><title>Notes on connection pooling</title></head>
<body>
  <article>
    <h1>Notes on connection pooling</h1>
    <p>This post walks through the documentation of our database driver and how
    we sized the pool for the reporting service.</p>
    <p>Update: we now run two pools, one per region. See the careers page if
    you want to help.</p>
    <img src="/static/pools.svg">
  </article>
</body>
</html>`,
			},
		},
	}
}
