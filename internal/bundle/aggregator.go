package bundle

import (
	"github.com/forgepack/forge/internal/errors"
)

// Aggregate walks PBRs in load order and merges their resources into the
// bundle-wide file tables and ordered load lists (spec §4.5 C7
// Aggregator).
func Aggregate(b *Bundle, strictServerCSS bool) error {
	for _, pbr := range b.PBRsByOrder {
		for _, env := range AllEnvironments {
			if !pbr.Presence[env] {
				continue
			}
			for _, r := range pbr.Resources[env] {
				if err := aggregateOne(b, pbr, env, r, strictServerCSS); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func aggregateOne(b *Bundle, pbr *PBR, env Environment, r Resource, strictServerCSS bool) error {
	switch r.Type {
	case ResourceJS:
		if err := b.claimServePath(env, r.ServePath, pbr.Package.Name); err != nil {
			return err
		}
		table := b.fileTable(env)
		table[r.ServePath] = r.Data
		if env == EnvClient {
			b.JS.Client = appendUnique(b.JS.Client, r.ServePath)
		} else {
			b.JS.Server = appendUnique(b.JS.Server, r.ServePath)
			b.ServerLoad = appendUnique(b.ServerLoad, r.ServePath)
		}
	case ResourceCSS:
		// Server CSS is silently dropped by default (I5, P7); promotable
		// to a Handler-category error when strictServerCSS is set
		// (SPEC_FULL.md §9, resolved open question 4).
		if env == EnvServer {
			if strictServerCSS {
				return errors.NewHandlerError(pbr.Package.Name, r.ServePath, nil)
			}
			return nil
		}
		if err := b.claimServePath(env, r.ServePath, pbr.Package.Name); err != nil {
			return err
		}
		b.Files.Client[r.ServePath] = r.Data
		b.CSS = appendUnique(b.CSS, r.ServePath)
	case ResourceStatic:
		if err := b.claimServePath(env, r.ServePath, pbr.Package.Name); err != nil {
			return err
		}
		table := b.fileTable(env)
		table[r.ServePath] = r.Data
		if env == EnvClient {
			b.Static.Client = appendUnique(b.Static.Client, r.ServePath)
		} else {
			b.Static.Server = appendUnique(b.Static.Server, r.ServePath)
			b.ServerLoad = appendUnique(b.ServerLoad, r.ServePath)
		}
	case ResourceHead:
		if env != EnvClient {
			return errors.NewResourceTypeError("head fragment targeting server environment")
		}
		b.Head = append(b.Head, string(r.Data))
	case ResourceBody:
		if env != EnvClient {
			return errors.NewResourceTypeError("body fragment targeting server environment")
		}
		b.Body = append(b.Body, string(r.Data))
	default:
		return errors.NewResourceTypeError("unknown resource type " + string(r.Type))
	}
	return nil
}

// claimServePath enforces I3: a serve path may be written at most once per
// environment across the whole bundle. A later write to an already-claimed
// path is a conflict (spec §4.5, §7), not a silent overwrite.
func (b *Bundle) claimServePath(env Environment, servePath, pkgName string) error {
	owners := b.servePathOwner[env]
	if owner, claimed := owners[servePath]; claimed {
		return errors.NewResourceTypeError(
			"serve path " + servePath + " claimed by both package " + owner + " and package " + pkgName)
	}
	owners[servePath] = pkgName
	return nil
}

func (b *Bundle) fileTable(env Environment) FileTable {
	if env == EnvServer {
		return b.Files.Server
	}
	return b.Files.Client
}

func appendUnique(list []string, name string) []string {
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}
