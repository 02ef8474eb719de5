package app

import (
	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/modules/composer"
	"github.com/specialistvlad/burstplan/modules/containers"
	"github.com/specialistvlad/burstplan/modules/frontend"
	"github.com/specialistvlad/burstplan/modules/phpunit"
	"github.com/specialistvlad/burstplan/modules/quality"
	"github.com/specialistvlad/burstplan/modules/reporting"
	"github.com/specialistvlad/burstplan/modules/vcs"
)

// CoreModules is the definitive list of fragment catalogues compiled into
// the burstplan binary.
func CoreModules() []fragment.Module {
	return []fragment.Module{
		&vcs.Module{},
		&containers.Module{},
		&composer.Module{},
		&phpunit.Module{},
		&quality.Module{},
		&frontend.Module{},
		&reporting.Module{},
	}
}
