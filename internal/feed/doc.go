// Package feed republishes session events to WebSocket clients on the LAN.
//
// A Hub keeps the last known device state and pushes every change as a JSON Event
// to all connected clients; a client that connects late first receives a snapshot.
// Advertise announces the feed over mDNS so dashboards can find it without
// configuration:
//
//	hub := feed.NewHub()
//	srv := &http.Server{Addr: ":8765", Handler: hub}
//	go srv.ListenAndServe()
//
//	adv, err := feed.Advertise(feed.AdvertiseConfig{Instance: "living-room", Port: 8765})
//	defer adv.Shutdown()
//
//	sc.OnStatus = func(p session.Properties) { hub.Publish(feed.KindStatus, p) }
package feed
