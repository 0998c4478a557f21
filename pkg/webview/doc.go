// Package webview embeds a WKWebView in a host window.
//
// A WebView is created by a Builder and reports page activity to an
// EventHandler: navigation phases and strings posted from page script
// through window.webkit.messageHandlers.wkview.postMessage. Requests for
// wkview:// URLs are answered by a RequestHandler instead of the network.
//
//	w, err := webview.NewBuilder().
//		WithRequestHandler(webview.NewDirHandler(os.DirFS("site"))).
//		Build(ctx, webview.HandlerFunc(onEvent), window)
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//	w.Navigate(webview.URL("wkview://localhost/index.html"))
//
// Both handlers are owned by the native delegate from Build until WebKit
// frees it after Close. A handler that implements io.Closer is closed then.
package webview
