// ABOUTME: mDNS service discovery for chime daemons
// ABOUTME: Announces a daemon with its websocket path and finds daemons on the local network
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Sendspin/chime/internal/protocol"
	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service type of a chime daemon
const ServiceType = "_chime._tcp"

// DefaultQueryTimeout bounds one query round when no timeout is given
const DefaultQueryTimeout = 3 * time.Second

// Daemon is a chime daemon seen on the network
type Daemon struct {
	Name string
	Host string
	Port int
	// Path is the websocket endpoint announced in the TXT record
	Path string
}

// Addr returns host:port of the daemon
func (d Daemon) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// Announcement keeps a daemon advertised until Close
type Announcement struct {
	server *mdns.Server
}

// Announce advertises a daemon called name listening on port
func Announce(name string, port int) (*Announcement, error) {
	ips, err := announceIPs()
	if err != nil {
		return nil, fmt.Errorf("failed to list interface addresses: %w", err)
	}

	zone, err := mdns.NewMDNSService(name, ServiceType, "", "", port, ips, []string{"path=" + protocol.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s service: %w", ServiceType, err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return nil, fmt.Errorf("failed to start mdns responder: %w", err)
	}

	log.Printf("Announcing %s as %q on port %d", ServiceType, name, port)
	return &Announcement{server: server}, nil
}

// Close withdraws the announcement
func (a *Announcement) Close() error {
	return a.server.Shutdown()
}

// Browse queries for daemons until ctx ends, calling found once per daemon name.
// Each query round lasts at most timeout.
func Browse(ctx context.Context, timeout time.Duration, found func(Daemon)) error {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}

	seen := make(map[string]bool)
	for ctx.Err() == nil {
		round := timeout
		if deadline, ok := ctx.Deadline(); ok {
			round = min(round, time.Until(deadline))
			if round <= 0 {
				break
			}
		}

		entries := make(chan *mdns.ServiceEntry, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for entry := range entries {
				d, ok := daemonFrom(entry)
				if !ok || seen[d.Name] || ctx.Err() != nil {
					continue
				}
				seen[d.Name] = true
				found(d)
			}
		}()

		err := mdns.Query(&mdns.QueryParam{
			Service: ServiceType,
			Domain:  "local",
			Timeout: round,
			Entries: entries,
		})
		close(entries)
		<-done

		if err != nil {
			return fmt.Errorf("mdns query failed: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.DeadlineExceeded
}

// FindServer returns the first daemon that answers before ctx ends
func FindServer(ctx context.Context, timeout time.Duration) (Daemon, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	first := make(chan Daemon, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- Browse(ctx, timeout, func(d Daemon) {
			select {
			case first <- d:
				cancel()
			default:
			}
		})
	}()

	select {
	case d := <-first:
		return d, nil
	case err := <-errc:
		select {
		case d := <-first:
			return d, nil
		default:
		}
		return Daemon{}, fmt.Errorf("no %s daemon found: %w", ServiceType, err)
	}
}

// daemonFrom converts a query answer, preferring IPv4
func daemonFrom(entry *mdns.ServiceEntry) (Daemon, bool) {
	d := Daemon{
		Name: strings.TrimSuffix(entry.Name, "."+ServiceType+".local."),
		Port: entry.Port,
		Path: protocol.Path,
	}

	switch {
	case entry.AddrV4 != nil:
		d.Host = entry.AddrV4.String()
	case entry.AddrV6 != nil:
		d.Host = entry.AddrV6.String()
	default:
		return Daemon{}, false
	}

	for _, field := range entry.InfoFields {
		if v, ok := strings.CutPrefix(field, "path="); ok && v != "" {
			d.Path = v
		}
	}
	return d, d.Port > 0
}

// announceIPs lists the non-loopback IPv4 addresses of interfaces that are up
func announceIPs() ([]net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}
	return ips, nil
}
