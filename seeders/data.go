package seeders

// Seed dictionaries: the demo department has three labs and a small catalog
// of equipment types.
var labsData = []struct {
	Name     string
	Location string
}{
	{"Physics Lab", "Block A, Room 101"},
	{"Chemistry Lab", "Block A, Room 204"},
	{"Computer Lab", "Block B, Room 310"},
}

var equipmentTypesData = []string{
	"Microscope",
	"Oscilloscope",
	"Centrifuge",
	"Spectrometer",
	"Workstation",
	"3D Printer",
}

// One HOD plus an incharge and an assistant per lab. The lab index refers to
// labsData; -1 means department-wide scope (no lab).
var usersData = []struct {
	FullName string
	Email    string
	Password string
	Role     string
	LabIndex int
}{
	{"Dilshod Rahimov", "hod@lab.test", "hod-password", "hod", -1},
	{"Farida Nazarova", "incharge.physics@lab.test", "incharge-password", "lab_incharge", 0},
	{"Jamshed Saidov", "incharge.chemistry@lab.test", "incharge-password", "lab_incharge", 1},
	{"Malika Qosimova", "incharge.computer@lab.test", "incharge-password", "lab_incharge", 2},
	{"Rustam Aliev", "assistant.physics@lab.test", "assistant-password", "lab_assistant", 0},
	{"Nigora Karimova", "assistant.chemistry@lab.test", "assistant-password", "lab_assistant", 1},
	{"Bobur Yusupov", "assistant.computer@lab.test", "assistant-password", "lab_assistant", 2},
}
