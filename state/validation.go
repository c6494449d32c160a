package state

import (
	"fmt"
	"net/netip"
	"os"
	"path"
	"path/filepath"
	"regexp"
)

var namePattern, _ = regexp.Compile("^[0-9a-z._-]+$")

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

// PrefixValidator checks that a prefix is usable as a pool key: valid, IPv6,
// and canonical (no host bits set).
func PrefixValidator(p netip.Prefix) error {
	if !p.IsValid() {
		return fmt.Errorf("prefix %s is invalid", p)
	}
	if !p.Addr().Is6() || p.Addr().Is4In6() {
		return fmt.Errorf("prefix %s must be IPv6", p)
	}
	if p.Masked() != p {
		return fmt.Errorf("prefix %s has host bits set, expected %s", p, p.Masked())
	}
	return nil
}

// OnMeshPrefixValidator rejects configs the publisher must never accept:
// unstable entries, non-canonical prefixes, and contradictory flag
// combinations.
func OnMeshPrefixValidator(cfg OnMeshPrefixConfig) error {
	if err := PrefixValidator(cfg.Prefix); err != nil {
		return err
	}
	if !cfg.Stable {
		return fmt.Errorf("on-mesh prefix %s is not stable, only stable entries can be published", cfg.Prefix)
	}
	if !cfg.Preference.IsValid() {
		return fmt.Errorf("on-mesh prefix %s has invalid preference", cfg.Prefix)
	}
	if cfg.Preferred && !cfg.Slaac {
		return fmt.Errorf("on-mesh prefix %s sets preferred without slaac", cfg.Prefix)
	}
	if cfg.DefaultRoute && !cfg.OnMesh {
		return fmt.Errorf("on-mesh prefix %s sets default_route without on_mesh", cfg.Prefix)
	}
	return nil
}

func ExternalRouteValidator(cfg ExternalRouteConfig) error {
	if err := PrefixValidator(cfg.Prefix); err != nil {
		return err
	}
	if !cfg.Stable {
		return fmt.Errorf("route %s is not stable, only stable entries can be published", cfg.Prefix)
	}
	if !cfg.Preference.IsValid() {
		return fmt.Errorf("route %s has invalid preference", cfg.Prefix)
	}
	return nil
}

func DnsSrpValidator(cfg *DnsSrpCfg) error {
	if cfg == nil {
		return nil
	}
	if cfg.Anycast != nil && cfg.Unicast != nil {
		return fmt.Errorf("dnssrp declares both anycast and unicast, only one service entry may exist")
	}
	if cfg.Anycast == nil && cfg.Unicast == nil {
		return fmt.Errorf("dnssrp declares neither anycast nor unicast")
	}
	if cfg.Unicast != nil {
		if cfg.Unicast.Port == 0 {
			return fmt.Errorf("dnssrp unicast port must be non-zero")
		}
		if cfg.Unicast.Address.IsValid() && !cfg.Unicast.Address.Is6() {
			return fmt.Errorf("dnssrp unicast address %s must be IPv6", cfg.Unicast.Address)
		}
	}
	return nil
}

func LocalConfigValidator(cfg *LocalCfg) error {
	if err := NameValidator(string(cfg.Id)); err != nil {
		return err
	}
	if cfg.LogPath != "" {
		if err := PathValidator(cfg.LogPath); err != nil {
			return err
		}
	}
	seen := make(map[netip.Prefix]struct{})
	for _, p := range cfg.Publish.OnMesh {
		if err := OnMeshPrefixValidator(p); err != nil {
			return err
		}
		if _, ok := seen[p.Prefix]; ok {
			return fmt.Errorf("prefix %s is declared more than once", p.Prefix)
		}
		seen[p.Prefix] = struct{}{}
	}
	for _, r := range cfg.Publish.Routes {
		if err := ExternalRouteValidator(r); err != nil {
			return err
		}
		if _, ok := seen[r.Prefix]; ok {
			return fmt.Errorf("prefix %s is declared more than once", r.Prefix)
		}
		seen[r.Prefix] = struct{}{}
	}
	if len(seen) > cfg.Limits.PrefixCapacity() {
		return fmt.Errorf("%d prefixes declared, pool capacity is %d", len(seen), cfg.Limits.PrefixCapacity())
	}
	return DnsSrpValidator(cfg.Publish.DnsSrp)
}
