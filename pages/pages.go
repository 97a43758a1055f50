package pages

var Landing = `
<!DOCTYPE html>
<html>
<head>
    <title>Groovr</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            max-width: 800px;
            margin: 0 auto;
            padding: 20px;
        }
    </style>
</head>
<body>
    <h1>Groovr</h1>
    <p>Pick a song, Groovr listens to a short clip of it, figures out the
    genre, and builds you a batch of recommendations you can save straight
    to a playlist.</p>
    <p>Sign in with Spotify via <code>GET /api/auth/login</code> to get started.</p>
</body>
</html>`

var PrivacyPolicy = `
<!DOCTYPE html>
<html>
<head>
    <title>Privacy Policy</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            max-width: 800px;
            margin: 0 auto;
            padding: 20px;
        }
        pre {
            white-space: pre-wrap;
            word-wrap: break-word;
        }
    </style>
</head>
<body>
    <h1>Privacy Policy</h1>
    <pre>%s</pre>
</body>
</html>`

// PolicyText is the plain-text body rendered into PrivacyPolicy.
var PolicyText = `Groovr stores only what it needs to keep you signed in:
an opaque session id in a cookie, and your Spotify tokens server-side,
bound to that session. Sessions are pruned after they expire.

Audio preview clips are fetched from public catalog endpoints and sent
to a genre classifier. Nothing about your listening is retained beyond
the playlists you explicitly choose to create.`
