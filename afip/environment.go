package afip

// Environment selects between AFIP's homologación (testing) and
// producción service endpoints.
type Environment int

const (
	Testing Environment = iota
	Production
)

func (e Environment) WSAAURL() string {
	switch e {
	case Production:
		return "https://wsaa.afip.gov.ar/ws/services/LoginCms"
	default:
		return "https://wsaahomo.afip.gov.ar/ws/services/LoginCms"
	}
}

func (e Environment) WSFEURL() string {
	switch e {
	case Production:
		return "https://servicios1.afip.gov.ar/wsfev1/service.asmx"
	default:
		return "https://wswhomo.afip.gov.ar/wsfev1/service.asmx"
	}
}

func (e Environment) String() string {
	if e == Production {
		return "production"
	}
	return "testing"
}
