// Package browser wraps the headless-browser automation engine behind a
// narrow capability interface: navigate to a URL, read the rendered DOM,
// take a screenshot.
//
// One Session holds one authenticated browser context. Cookies and login
// state live inside the browser, so all navigations of a crawl run share a
// single Session and execute strictly sequentially; the package makes no
// attempt to support concurrent navigation on the same Session.
package browser
