package enzyme

// Commonly used Type IIS enzymes for Golden Gate / MoClo style assembly.
var builtin = []Enzyme{
	{Name: "BsaI", Site: "GGTCTC", CutTop: 1, CutBottom: 5},
	{Name: "BsmBI", Site: "CGTCTC", CutTop: 1, CutBottom: 5},
	{Name: "Esp3I", Site: "CGTCTC", CutTop: 1, CutBottom: 5},
	{Name: "BbsI", Site: "GAAGAC", CutTop: 2, CutBottom: 6},
	{Name: "SapI", Site: "GCTCTTC", CutTop: 1, CutBottom: 4},
	{Name: "BtgZI", Site: "GCGATG", CutTop: 10, CutBottom: 14},
	{Name: "PaqCI", Site: "CACCTGC", CutTop: 4, CutBottom: 8},
}
