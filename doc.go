// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package reqx provides a request orchestration engine for HTTP clients:
typed request pipelines, ordered plug-ins around every request, pluggable
retry, and a "stop-the-line" mechanism which pauses all traffic while a
recovery action, such as an access token refresh, runs.

Create a Manager to begin making requests.

	m := reqx.New()
	res, err := m.Do(ctx, request.RawURL("https://www.example.com"), nil, nil)
	...
	p, _ := request.NewParameters(
		request.WithMethod("POST"),
		request.WithJSONBody(&order),
	)
	var receipt *Receipt
	receipt, _, err = reqx.Decode(ctx, m, request.RawURL("https://shop.example.com/orders"),
		p, decode.JSON[Receipt]())

For control over how requests are sent, use a custom Transport. Any
http.Client is a Transport:

	m := reqx.New(reqx.WithTransport(&http.Client{
		..., // See package "net/http" for detailed documentation
	}))

For control over retry decisions and timing, create a retry policy using
components from package retry:

	retrier := retry.New(3, retry.DefaultDecider, retry.DefaultWaiter, retry.Pass)
	m := reqx.New(reqx.WithRetrier(retrier))

To refresh credentials while holding back all other traffic, install a
stop-the-line policy from package stopline together with a bearer token
plug-in from package plugin:

	store := plugin.NewTokenStore(token)
	m := reqx.New(
		reqx.WithPlugins(plugin.Bearer(store)),
		reqx.WithStopTheLine(stopline.Refresh(refreshToken)),
	)

To hook into the life of every request, install plug-ins:

	metrics, _ := plugin.NewMetrics(prometheus.DefaultRegisterer, "myapp")
	m := reqx.New(reqx.WithPlugins(
		plugin.RequestID(),
		plugin.Log(logger),
		metrics,
		plugin.StatusCodes(200, 299),
	))

Package reqx provides the raw asynchronous request primitive
(Manager.Request) and its blocking form (Manager.Do); the abstract
contract of a request manager (Requester and Doer); typed request
functions built on any Doer (Decode, DecodeOptional, Data, JSON, Image
and Void); and utility functions (Inflate, Get, Head, Post and
PostForm).
*/
package reqx
